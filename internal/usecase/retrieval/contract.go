package retrieval

import (
	"context"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
)

// Catalog reads storefront pages and chunks.
type Catalog interface {
	NearestChunks(ctx context.Context, vector []float32, count int, floor float64) ([]evidence.Hit, error)
	SearchPages(ctx context.Context, term string, limit int) ([]evidence.Hit, error)
	SearchChunks(ctx context.Context, term string, limit int) ([]evidence.Hit, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
