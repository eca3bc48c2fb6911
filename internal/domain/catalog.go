package domain

// KeyPrefix namespaces every key storeqa writes into a shared key-value store.
const KeyPrefix = "storeqa:"

// Catalog collections. The names double as PostgreSQL table names and as the middle
// segment of Redis keys and index names.
const (
	CollectionPages  = "web_pages"
	CollectionChunks = "web_chunks"
)

// Catalog field names shared by both backends.
const (
	FieldURL        = "url"
	FieldTitle      = "title"
	FieldContent    = "content"
	FieldChunkIndex = "chunk_index"
	FieldCrawledAt  = "crawled_at"
	FieldEmbedding  = "embedding"
)

// DefaultEmbeddingDimensions matches text-embedding-3-small.
const DefaultEmbeddingDimensions = 1536
