package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/page"
)

var errNotFound = errors.New("404 not found")

// mockFetcher serves canned documents by url.
type mockFetcher struct {
	docs    map[string]string
	fetched []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.fetched = append(m.fetched, url)
	doc, ok := m.docs[url]
	if !ok {
		return nil, errNotFound
	}
	return []byte(doc), nil
}

type mockCatalog struct {
	pages  []page.Page
	chunks []page.Chunk

	upsertErr error
	insertErr error
}

func (m *mockCatalog) UpsertPage(_ context.Context, p page.Page) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.pages = append(m.pages, p)
	return nil
}

func (m *mockCatalog) InsertChunks(_ context.Context, chunks []page.Chunk) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.chunks = append(m.chunks, chunks...)
	return nil
}

// mockEmbedder returns one-dimensional vectors and records batch sizes.
type mockEmbedder struct {
	batches []int
	err     error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{1}}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	m.batches = append(m.batches, len(texts))
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i)}
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts)}, nil
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

// htmlPage renders a page whose body holds n runes of text.
func htmlPage(title string, n int) string {
	return "<html><head><title>" + title + "</title><script>var x = 1;</script></head><body><p>" +
		strings.Repeat("a", n) + "</p></body></html>"
}

func urlset(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		b.WriteString("<url><loc>" + l + "</loc></url>")
	}
	b.WriteString("</urlset>")
	return b.String()
}

func sitemapIndex(locs ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	for _, l := range locs {
		b.WriteString("<sitemap><loc>" + l + "</loc></sitemap>")
	}
	b.WriteString("</sitemapindex>")
	return b.String()
}

func testConfig(sitemaps ...string) Config {
	cfg := DefaultConfig()
	cfg.Sitemaps = sitemaps
	return cfg
}
