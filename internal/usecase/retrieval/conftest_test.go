package retrieval

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
)

type knnCall struct {
	count int
	floor float64
}

// mockCatalog implements Catalog for tests. Safe for concurrent use.
type mockCatalog struct {
	mu       sync.Mutex
	knnCalls []knnCall
	terms    []string

	nearestFn      func(ctx context.Context, vector []float32, count int, floor float64) ([]evidence.Hit, error)
	searchPagesFn  func(ctx context.Context, term string, limit int) ([]evidence.Hit, error)
	searchChunksFn func(ctx context.Context, term string, limit int) ([]evidence.Hit, error)
}

func (m *mockCatalog) NearestChunks(ctx context.Context, vector []float32, count int, floor float64) ([]evidence.Hit, error) {
	m.mu.Lock()
	m.knnCalls = append(m.knnCalls, knnCall{count: count, floor: floor})
	m.mu.Unlock()
	if m.nearestFn != nil {
		return m.nearestFn(ctx, vector, count, floor)
	}
	return nil, nil
}

func (m *mockCatalog) SearchPages(ctx context.Context, term string, limit int) ([]evidence.Hit, error) {
	m.mu.Lock()
	m.terms = append(m.terms, term)
	m.mu.Unlock()
	if m.searchPagesFn != nil {
		return m.searchPagesFn(ctx, term, limit)
	}
	return nil, nil
}

func (m *mockCatalog) SearchChunks(ctx context.Context, term string, limit int) ([]evidence.Hit, error) {
	m.mu.Lock()
	m.terms = append(m.terms, term)
	m.mu.Unlock()
	if m.searchChunksFn != nil {
		return m.searchChunksFn(ctx, term, limit)
	}
	return nil, nil
}

func (m *mockCatalog) calls() []knnCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]knnCall(nil), m.knnCalls...)
}

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}, TotalTokens: 3}, nil
}

func newTestService(t *testing.T) (*Service, *mockCatalog, *mockEmbedder) {
	t.Helper()
	mc := &mockCatalog{}
	me := &mockEmbedder{}
	svc, err := New(mc, me, DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, mc, me
}

func hits(urls ...string) []evidence.Hit {
	out := make([]evidence.Hit, 0, len(urls))
	for i, u := range urls {
		out = append(out, evidence.Hit{URL: u, Content: "content of " + u, Similarity: 0.7 - float64(i)*0.01})
	}
	return out
}

// hitsByCall returns the i-th response for the i-th vector search call.
func hitsByCall(responses ...[]evidence.Hit) func(context.Context, []float32, int, float64) ([]evidence.Hit, error) {
	var mu sync.Mutex
	n := 0
	return func(_ context.Context, _ []float32, _ int, _ float64) ([]evidence.Hit, error) {
		mu.Lock()
		defer mu.Unlock()
		defer func() { n++ }()
		if n < len(responses) {
			return responses[n], nil
		}
		return nil, nil
	}
}
