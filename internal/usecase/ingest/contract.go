package ingest

import (
	"context"

	"github.com/kailas-cloud/storeqa/internal/domain/page"
)

// Fetcher downloads a document by url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Catalog stores crawled pages and their embedded chunks.
type Catalog interface {
	UpsertPage(ctx context.Context, p page.Page) error
	InsertChunks(ctx context.Context, chunks []page.Chunk) error
}
