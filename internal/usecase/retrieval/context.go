package retrieval

import (
	"strings"

	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
)

const contextSeparator = "\n\n---\n\n"

// BuildContext renders items as "URL: <url>\nCONTENT:\n<content>" blocks joined by a
// separator. Content is cut to perItem runes and the whole block to total runes.
// No items yield an empty string.
func BuildContext(items []evidence.Item, perItem, total int) string {
	if len(items) == 0 {
		return ""
	}

	var b strings.Builder
	for i := range items {
		if i > 0 {
			b.WriteString(contextSeparator)
		}
		b.WriteString("URL: ")
		b.WriteString(items[i].URL())
		b.WriteString("\nCONTENT:\n")
		b.WriteString(cutRunes(items[i].Content(), perItem))
	}

	return cutRunes(b.String(), total)
}

func cutRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
