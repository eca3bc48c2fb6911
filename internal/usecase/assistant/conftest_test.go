package assistant

import (
	"context"
	"testing"

	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	"github.com/kailas-cloud/storeqa/internal/usecase/retrieval"
)

type mockRetriever struct {
	retrieveFn func(ctx context.Context, message string, tag intent.Tag) (retrieval.Result, error)
	calls      int
	lastTag    intent.Tag
}

func (m *mockRetriever) Retrieve(ctx context.Context, message string, tag intent.Tag) (retrieval.Result, error) {
	m.calls++
	m.lastTag = tag
	if m.retrieveFn != nil {
		return m.retrieveFn(ctx, message, tag)
	}
	return retrieval.Result{}, nil
}

type mockCompleter struct {
	completeFn func(ctx context.Context, system, user string) (string, error)
	calls      int
	system     string
	user       string
}

func (m *mockCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	m.calls++
	m.system = system
	m.user = user
	if m.completeFn != nil {
		return m.completeFn(ctx, system, user)
	}
	return "generated answer", nil
}

func newTestService(t *testing.T) (*Service, *mockRetriever, *mockCompleter) {
	t.Helper()
	mr := &mockRetriever{}
	mc := &mockCompleter{}
	svc, err := New(mr, mc, nil, DefaultPersona())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, mr, mc
}
