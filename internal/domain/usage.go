package domain

import (
	"context"
	"sync"
)

type usageKey struct{}

// Usage collects external-call accounting for a single request.
// The handler puts a pointer into the context before calling the pipeline; the pipeline
// records into it from concurrent goroutines; the handler reads it for response headers.
type Usage struct {
	mu              sync.Mutex
	embeddingTokens int
	vectorCalls     int
	lexicalCalls    int
}

// NewContextWithUsage returns a context with an attached usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records consumed embedding tokens.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.embeddingTokens += n
	u.mu.Unlock()
}

// AddVectorCall records one vector-search round-trip.
func (u *Usage) AddVectorCall() {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.vectorCalls++
	u.mu.Unlock()
}

// AddLexicalCall records one keyword-search round-trip.
func (u *Usage) AddLexicalCall() {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.lexicalCalls++
	u.mu.Unlock()
}

// EmbeddingTokens returns the recorded embedding tokens.
func (u *Usage) EmbeddingTokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.embeddingTokens
}

// VectorCalls returns the recorded vector-search calls.
func (u *Usage) VectorCalls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.vectorCalls
}

// LexicalCalls returns the recorded keyword-search calls.
func (u *Usage) LexicalCalls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lexicalCalls
}
