package app

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/config"
	"github.com/kailas-cloud/storeqa/internal/db"
	"github.com/kailas-cloud/storeqa/internal/domain"
)

// memStore is an in-memory db.Store with substring text search and exact cosine KNN.
type memStore struct {
	mu      sync.Mutex
	kv      map[string][]byte
	indexes map[string]bool
	rows    map[string]map[string]db.Record
	pingErr error
	closed  bool
}

func newMemStore() *memStore {
	return &memStore{
		kv:      make(map[string][]byte),
		indexes: make(map[string]bool),
		rows:    make(map[string]map[string]db.Record),
	}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
	return nil
}

func (m *memStore) SetWithTTL(ctx context.Context, key string, value []byte, _ time.Duration) error {
	return m.Set(ctx, key, value)
}

func (m *memStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.indexes[def.Name] {
		return db.ErrIndexExists
	}
	m.indexes[def.Name] = true
	return nil
}

func (m *memStore) DropIndex(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.indexes, name)
	return nil
}

func (m *memStore) IndexExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexes[name], nil
}

func (m *memStore) Upsert(_ context.Context, collection string, records []db.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows[collection] == nil {
		m.rows[collection] = make(map[string]db.Record)
	}
	for _, r := range records {
		m.rows[collection][r.ID] = r
	}
	return nil
}

func (m *memStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []db.SearchEntry
	for id, r := range m.rows[q.Collection] {
		score := cosine(q.Vector, r.Vector)
		if score < q.MinSimilarity {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: id, Score: score, Fields: r.Fields})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	if len(entries) > q.K {
		entries = entries[:q.K]
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func (m *memStore) SearchText(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	term := strings.ToLower(q.Term)
	var entries []db.SearchEntry
	for id, r := range m.rows[q.Collection] {
		for _, f := range q.Fields {
			if strings.Contains(strings.ToLower(r.Fields[f]), term) {
				entries = append(entries, db.SearchEntry{Key: id, Fields: r.Fields})
				break
			}
		}
	}
	if q.Limit > 0 && len(entries) > q.Limit {
		entries = entries[:q.Limit]
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}

func (m *memStore) Close() { m.closed = true }

func (m *memStore) WaitForReady(context.Context, time.Duration) error { return nil }

func (m *memStore) count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows[collection])
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// constEmbedder maps every text to the same unit vector.
type constEmbedder struct {
	mu    sync.Mutex
	calls int
}

func (e *constEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	return domain.EmbeddingResult{Embedding: []float32{1, 0, 0}, PromptTokens: 1, TotalTokens: 1}, nil
}

func (e *constEmbedder) HealthCheck(context.Context) error { return nil }

type mockCompleter struct {
	reply     string
	err       error
	healthErr error
	users     []string
}

func (c *mockCompleter) Complete(_ context.Context, _, user string) (string, error) {
	c.users = append(c.users, user)
	return c.reply, c.err
}

func (c *mockCompleter) HealthCheck(context.Context) error { return c.healthErr }

type mockFetcher struct {
	docs map[string]string
}

func (f *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	doc, ok := f.docs[url]
	if !ok {
		return nil, fmt.Errorf("%s: %w", url, domain.ErrUpstream)
	}
	return []byte(doc), nil
}

func testConfig() config.Config {
	cfg := config.Config{
		HTTP:      config.HTTPConfig{Port: 8080},
		Database:  config.DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Embedding: config.EmbeddingConfig{Dimensions: 3, Cache: config.EmbeddingCacheConfig{Enabled: true}},
	}
	cfg.ApplyDefaults()
	return cfg
}

const returnsPage = `<html><head><title>Returns &amp; Refunds</title></head><body>
<script>var tracking = true;</script>
<p>You can return any unworn swimsuit within 30 days of delivery for a full refund.
Items must carry their original hygiene liner and tags. Start a return from your order page
and print the prepaid label. Refunds reach the original payment method within five business
days after the parcel arrives at our warehouse.</p></body></html>`

func newTestApp(t *testing.T, opts ...Option) (*App, *memStore, *mockCompleter) {
	t.Helper()
	store := newMemStore()
	completer := &mockCompleter{reply: "You have 30 days to return unworn items."}
	base := []Option{
		WithStore(store),
		WithEmbedder(&constEmbedder{}),
		WithCompleter(completer),
		WithFetcher(&mockFetcher{docs: map[string]string{
			"https://shop.test/pages/returns": returnsPage,
		}}),
	}
	a, err := New(context.Background(), testConfig(), zap.NewNop(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(a.Close)
	return a, store, completer
}
