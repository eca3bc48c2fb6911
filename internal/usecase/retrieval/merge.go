package retrieval

import (
	"sort"
	"strings"

	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
)

// Boost returns the summed weight of every rule matching url.
func (s *Scoring) Boost(url string) float64 {
	lower := strings.ToLower(url)
	var total float64
	for _, rule := range s.Boosts {
		for _, p := range rule.Patterns {
			if strings.Contains(lower, strings.ToLower(p)) {
				total += rule.Weight
				break
			}
		}
	}
	return total
}

// Merge unions vector and keyword hits into at most maxOut items, one per url, sorted by
// boosted score descending. Urls are grouped in first-seen order (vector, pages, chunks);
// a later duplicate replaces the kept item only with a strictly higher score.
// The kept item never loses content to an empty one.
func Merge(s *Scoring, vector, pages, chunks []evidence.Hit, maxOut int) []evidence.Item {
	items := make([]evidence.Item, 0, len(vector)+len(pages)+len(chunks))
	index := make(map[string]int, cap(items))

	add := func(h evidence.Hit, base float64, origin evidence.Origin) {
		if h.URL == "" {
			return
		}
		it := evidence.New(h.URL, h.Content, base+s.Boost(h.URL), origin)

		i, seen := index[h.URL]
		if !seen {
			index[h.URL] = len(items)
			items = append(items, it)
			return
		}

		kept := items[i]
		if it.Score() > kept.Score() {
			if it.Content() == "" && kept.Content() != "" {
				it = it.WithContent(kept.Content())
			}
			items[i] = it
			return
		}
		if kept.Content() == "" && it.Content() != "" {
			items[i] = kept.WithContent(it.Content())
		}
	}

	for _, h := range vector {
		add(h, h.Similarity, evidence.OriginVector)
	}
	for _, h := range pages {
		add(h, s.PageScore, evidence.OriginLexicalPage)
	}
	for _, h := range chunks {
		add(h, s.ChunkScore, evidence.OriginLexicalChunk)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score() > items[j].Score()
	})

	if maxOut >= 0 && len(items) > maxOut {
		items = items[:maxOut]
	}
	return items
}
