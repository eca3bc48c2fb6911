package db

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	Collection   string
	VectorField  string
	Vector       []float32
	K            int
	ReturnFields []string
	// MinSimilarity excludes rows whose cosine similarity is below it. Zero disables the floor.
	MinSimilarity float64
}

// TextQuery is the input for case-insensitive substring search.
// A row matches when any of Fields contains Term.
type TextQuery struct {
	Collection   string
	Term         string
	Fields       []string
	Limit        int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single row hit from a search. Score is cosine similarity for KNN
// and zero for text search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}
