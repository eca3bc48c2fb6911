package embcache

import (
	"context"
	"strings"
	"time"

	"github.com/kailas-cloud/storeqa/internal/db"
	"github.com/kailas-cloud/storeqa/internal/domain"
)

// hashEmbedder derives a one-dimensional vector from the text length.
type hashEmbedder struct {
	calls int
	err   error
}

func (h *hashEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	h.calls++
	if h.err != nil {
		return domain.EmbeddingResult{}, h.err
	}
	return domain.EmbeddingResult{
		Embedding:    []float32{float32(len(text))},
		PromptTokens: len(strings.Fields(text)),
		TotalTokens:  len(strings.Fields(text)),
	}, nil
}

// batchHashEmbedder also implements domain.BatchEmbedder and records each batch.
type batchHashEmbedder struct {
	hashEmbedder
	batches [][]string
}

func (b *batchHashEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	b.batches = append(b.batches, texts)
	return domain.BatchFallback(ctx, &b.hashEmbedder, texts)
}

type entry struct {
	value []byte
	ttl   time.Duration
}

// mapKV is an in-memory store recording the ttl each key was written with.
type mapKV struct {
	data   map[string]entry
	getErr error
	setErr error
}

func newMapKV() *mapKV { return &mapKV{data: map[string]entry{}} }

func (m *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	e, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return e.value, nil
}

func (m *mapKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = entry{value: value, ttl: ttl}
	return nil
}

func (m *mapKV) keys() []string {
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}
