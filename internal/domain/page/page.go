package page

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Page is a crawled storefront page.
type Page struct {
	URL       string
	Title     string
	Text      string
	CrawledAt time.Time
}

// Chunk is an overlapping slice of page text with its embedding.
type Chunk struct {
	ID        string
	URL       string
	Index     int
	Content   string
	Embedding []float32
}

// Split cuts text into windows of size runes that overlap by overlap runes.
// Windows are trimmed and blank windows dropped. overlap must be smaller than size.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	runes := []rune(text)
	if !utf8.ValidString(text) {
		runes = []rune(strings.ToValidUTF8(text, ""))
	}

	var out []string
	for i := 0; i < len(runes); {
		end := min(len(runes), i+size)
		if s := strings.TrimSpace(string(runes[i:end])); s != "" {
			out = append(out, s)
		}
		if end >= len(runes) {
			break
		}
		i = end - overlap
	}
	return out
}
