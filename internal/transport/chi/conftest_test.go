package chi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/storeqa/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/storeqa/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/storeqa/internal/usecase/retrieval"
)

type mockAssistant struct {
	replyFn func(ctx context.Context, message string) (assistantuc.Reply, error)
	sizeFn  func(bust, waist, hip float64) (assistantuc.SizeAnswer, error)
}

func (m *mockAssistant) Reply(ctx context.Context, message string) (assistantuc.Reply, error) {
	return m.replyFn(ctx, message)
}

func (m *mockAssistant) RecommendSize(bust, waist, hip float64) (assistantuc.SizeAnswer, error) {
	return m.sizeFn(bust, waist, hip)
}

type mockRetriever struct {
	retrieveFn func(ctx context.Context, message string, tag intent.Tag) (retrievaluc.Result, error)
}

func (m *mockRetriever) Retrieve(ctx context.Context, message string, tag intent.Tag) (retrievaluc.Result, error) {
	return m.retrieveFn(ctx, message, tag)
}

type mockSeeder struct {
	seedFn func(ctx context.Context, url string) (ingestuc.Result, error)
}

func (m *mockSeeder) Seed(ctx context.Context, url string) (ingestuc.Result, error) {
	return m.seedFn(ctx, url)
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

// testEnv bundles a server with its mocks.
type testEnv struct {
	assistant *mockAssistant
	retriever *mockRetriever
	seeder    *mockSeeder
	health    *mockHealth
	server    *Server
}

func newTestEnv() *testEnv {
	env := &testEnv{
		assistant: &mockAssistant{},
		retriever: &mockRetriever{},
		seeder:    &mockSeeder{},
		health: &mockHealth{report: healthuc.Report{
			Status: healthuc.Healthy,
			Checks: map[string]healthuc.CheckResult{healthuc.ComponentDatabase: healthuc.CheckOK},
		}},
	}
	env.server = NewServer(env.assistant, env.retriever, env.seeder, env.health, zap.NewNop())
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.server.Handler(nil).ServeHTTP(rr, req)
	return rr
}
