package evidence

// Origin is the retrieval path that produced an evidence item.
type Origin string

// Evidence origins.
const (
	OriginVector       Origin = "vector"
	OriginLexicalPage  Origin = "lexical-page"
	OriginLexicalChunk Origin = "lexical-chunk"
)

// IsValid checks if the origin is one of the supported values.
func (o Origin) IsValid() bool {
	return o == OriginVector || o == OriginLexicalPage || o == OriginLexicalChunk
}

// Hit is a raw catalog row returned by a vector or keyword search.
// Similarity is zero for keyword hits.
type Hit struct {
	URL        string
	Title      string
	Content    string
	Similarity float64
}

// Item is one candidate snippet considered for grounding a reply. The url is its identity.
type Item struct {
	url     string
	content string
	score   float64
	origin  Origin
}

// New creates an evidence item.
func New(url, content string, score float64, origin Origin) Item {
	return Item{url: url, content: content, score: score, origin: origin}
}

// URL returns the identity of the item.
func (i Item) URL() string { return i.url }

// Content returns the grounding text.
func (i Item) Content() string { return i.content }

// Score returns the boosted relevance score.
func (i Item) Score() float64 { return i.score }

// Origin returns the retrieval path that produced the item.
func (i Item) Origin() Origin { return i.origin }

// WithContent returns a copy of the item carrying the given content.
func (i Item) WithContent(content string) Item {
	i.content = content
	return i
}
