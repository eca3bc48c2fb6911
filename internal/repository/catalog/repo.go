package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/storeqa/internal/db"
	"github.com/kailas-cloud/storeqa/internal/domain"
)

// store is the consumer interface for the page/chunk catalog (ISP).
type store interface {
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	Upsert(ctx context.Context, collection string, records []db.Record) error
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo reads and writes the storefront page and chunk collections.
type Repo struct {
	store     store
	vectorDim int
	hnsw      HNSWConfig
}

// New creates a catalog repository.
func New(s store, vectorDim int) *Repo {
	if vectorDim <= 0 {
		vectorDim = domain.DefaultEmbeddingDimensions
	}
	return &Repo{store: s, vectorDim: vectorDim, hnsw: HNSWConfig{M: 16, EFConstruct: 200}}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// EnsureSchema creates the page and chunk collections. Existing collections are left as is.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	for _, def := range r.definitions() {
		if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
			return fmt.Errorf("create collection %s: %w", def.Name, err)
		}
	}
	return nil
}

func (r *Repo) definitions() []*db.IndexDefinition {
	pages := db.NewIndex(domain.CollectionPages).
		Text(domain.FieldURL).
		Text(domain.FieldTitle).
		Numeric(domain.FieldCrawledAt).
		MustBuild()

	chunks := db.NewIndex(domain.CollectionChunks).
		Text(domain.FieldURL).
		Numeric(domain.FieldChunkIndex).
		Text(domain.FieldContent).
		VectorHNSW(domain.FieldEmbedding, r.vectorDim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		MustBuild()

	return []*db.IndexDefinition{pages, chunks}
}
