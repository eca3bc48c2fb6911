package db

import (
	"context"
	"time"
)

// Store is the catalog database facade combining all sub-interfaces.
// Redis and PostgreSQL both implement it; consumers depend on the narrow sub-interfaces.
type Store interface {
	Pinger
	KVStore
	IndexManager
	Writer
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations. SetWithTTL with a non-positive ttl
// behaves like Set.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// IndexManager provides collection schema lifecycle operations.
// For Redis a collection is an FT index over hashes; for PostgreSQL it is a table.
type IndexManager interface {
	CreateIndex(ctx context.Context, def *IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Record is one row of a collection. ID is unique within the collection.
type Record struct {
	ID     string
	Fields map[string]string
	// Vector is stored under VectorField when non-empty.
	Vector      []float32
	VectorField string
}

// Writer upserts records into a collection.
type Writer interface {
	Upsert(ctx context.Context, collection string, records []Record) error
}

// Searcher provides search operations over collections.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchText(ctx context.Context, q *TextQuery) (*SearchResult, error)
}
