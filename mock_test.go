package storeqa

import (
	"context"
	"time"

	"github.com/kailas-cloud/storeqa/internal/db"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/storeqa/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/storeqa/internal/usecase/ingest"
)

// --- assistantUseCase mock ---

type mockAssistantUC struct {
	handleFn func(ctx context.Context, message string) (assistantuc.Answer, error)
	replyFn  func(ctx context.Context, message string) (assistantuc.Reply, error)
	sizeFn   func(bust, waist, hip float64) (assistantuc.SizeAnswer, error)
}

func (m *mockAssistantUC) Handle(ctx context.Context, message string) (assistantuc.Answer, error) {
	return m.handleFn(ctx, message)
}

func (m *mockAssistantUC) Reply(ctx context.Context, message string) (assistantuc.Reply, error) {
	return m.replyFn(ctx, message)
}

func (m *mockAssistantUC) RecommendSize(bust, waist, hip float64) (assistantuc.SizeAnswer, error) {
	return m.sizeFn(bust, waist, hip)
}

// --- ingestUseCase mock ---

type mockIngestUC struct {
	runFn  func(ctx context.Context, progress ingestuc.Progress) (ingestuc.Result, error)
	seedFn func(ctx context.Context, url string) (ingestuc.Result, error)
}

func (m *mockIngestUC) Run(ctx context.Context, progress ingestuc.Progress) (ingestuc.Result, error) {
	return m.runFn(ctx, progress)
}

func (m *mockIngestUC) Seed(ctx context.Context, url string) (ingestuc.Result, error) {
	return m.seedFn(ctx, url)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- public Embedder / Completer mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockCompleter struct {
	fn func(ctx context.Context, system, user string) (string, error)
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return m.fn(ctx, system, user)
}

type healthyCompleter struct {
	mockCompleter
	err error
}

func (h *healthyCompleter) HealthCheck(context.Context) error { return h.err }

// --- db.Store stub: accepts writes, finds nothing ---

type emptyStore struct {
	indexes []string
	closed  bool
}

func (s *emptyStore) Ping(context.Context) error { return nil }
func (s *emptyStore) Get(context.Context, string) ([]byte, error) {
	return nil, db.ErrKeyNotFound
}
func (s *emptyStore) Set(context.Context, string, []byte) error { return nil }
func (s *emptyStore) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (s *emptyStore) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	s.indexes = append(s.indexes, def.Name)
	return nil
}
func (s *emptyStore) DropIndex(context.Context, string) error          { return nil }
func (s *emptyStore) IndexExists(context.Context, string) (bool, error) { return false, nil }
func (s *emptyStore) Upsert(context.Context, string, []db.Record) error { return nil }
func (s *emptyStore) SearchKNN(context.Context, *db.KNNQuery) (*db.SearchResult, error) {
	return &db.SearchResult{}, nil
}
func (s *emptyStore) SearchText(context.Context, *db.TextQuery) (*db.SearchResult, error) {
	return &db.SearchResult{}, nil
}
func (s *emptyStore) Close()                                            { s.closed = true }
func (s *emptyStore) WaitForReady(context.Context, time.Duration) error { return nil }
