package retrieval

import (
	"regexp"
	"strings"

	"github.com/kailas-cloud/storeqa/internal/domain/intent"
)

var wordRe = regexp.MustCompile(`[a-z]+`)

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "also": {}, "been": {}, "before": {}, "both": {}, "can't": {},
	"could": {}, "does": {}, "doing": {}, "each": {}, "from": {}, "have": {}, "having": {},
	"hello": {}, "here": {}, "into": {}, "just": {}, "like": {}, "more": {}, "most": {},
	"much": {}, "need": {}, "only": {}, "other": {}, "please": {}, "should": {}, "some": {},
	"such": {}, "tell": {}, "than": {}, "thank": {}, "thanks": {}, "that": {}, "their": {},
	"them": {}, "then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"very": {}, "want": {}, "what": {}, "when": {}, "where": {}, "which": {}, "while": {},
	"will": {}, "with": {}, "would": {}, "your": {}, "yours": {},
}

// LexicalTerm picks the keyword searched in the catalog for a message. Intents with a
// canonical keyword use it; otherwise the longest non-stopword of at least four letters,
// first one on ties. An empty term means no keyword search.
func LexicalTerm(tag intent.Tag, message string) string {
	if kw := tag.Keyword(); kw != "" {
		return kw
	}

	var best string
	for _, w := range wordRe.FindAllString(strings.ToLower(message), -1) {
		if len(w) < 4 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		if len(w) > len(best) {
			best = w
		}
	}
	return best
}
