package storeqa

import (
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/config"
	"github.com/kailas-cloud/storeqa/internal/db"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	cfg config.Config

	embedder  Embedder
	completer Completer
	chart     []SizeRow
	logger    *zap.Logger

	// store replaces the configured database; used by tests.
	store db.Store
}

// WithRedis stores the catalog in Redis (RediSearch) at addr.
func WithRedis(addr, password string) Option {
	return func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverRedis
		c.cfg.Database.Addrs = []string{addr}
		c.cfg.Database.Password = password
	}
}

// WithPostgres stores the catalog in PostgreSQL with pgvector.
func WithPostgres(dsn string) Option {
	return func(c *clientConfig) {
		c.cfg.Database.Driver = config.DriverPostgres
		c.cfg.Database.DSN = dsn
	}
}

// WithOpenAI sets the API key used for both embeddings and chat completions.
func WithOpenAI(apiKey string) Option {
	return func(c *clientConfig) {
		c.cfg.Embedding.APIKey = apiKey
		c.cfg.Completion.APIKey = apiKey
	}
}

// WithBaseURL points both OpenAI clients at an OpenAI-compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.cfg.Embedding.BaseURL = url
		c.cfg.Completion.BaseURL = url
	}
}

// WithEmbeddingModel selects the embedding model and its vector dimensions.
func WithEmbeddingModel(model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.cfg.Embedding.Model = model
		c.cfg.Embedding.Dimensions = dimensions
	}
}

// WithCompletionModel selects the chat model.
func WithCompletionModel(model string) Option {
	return func(c *clientConfig) {
		c.cfg.Completion.Model = model
	}
}

// WithTemperature sets the sampling temperature of the chat model (0 to 2).
func WithTemperature(t float32) Option {
	return func(c *clientConfig) {
		c.cfg.Completion.Temperature = &t
	}
}

// WithEmbeddingCache caches query and chunk vectors in the catalog store. Zero ttl keeps
// them forever.
func WithEmbeddingCache(ttl time.Duration) Option {
	return func(c *clientConfig) {
		c.cfg.Embedding.Cache.Enabled = true
		c.cfg.Embedding.Cache.TTLHours = int(ttl / time.Hour)
	}
}

// WithEmbedder replaces the OpenAI embedder.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithCompleter replaces the OpenAI chat client.
func WithCompleter(cm Completer) Option {
	return func(c *clientConfig) {
		c.completer = cm
	}
}

// WithPersona sets the assistant name and brand used in the system prompt.
func WithPersona(name, brand string) Option {
	return func(c *clientConfig) {
		c.cfg.Assistant.Name = name
		c.cfg.Assistant.Brand = brand
	}
}

// WithSizeChart replaces the built-in size chart. Ranges are in inches.
func WithSizeChart(rows []SizeRow) Option {
	return func(c *clientConfig) {
		c.chart = rows
	}
}

// WithSitemaps sets the sitemaps Ingest walks.
func WithSitemaps(urls ...string) Option {
	return func(c *clientConfig) {
		c.cfg.Ingest.Sitemaps = urls
	}
}

// WithLogger sets the zap logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = l
	}
}

func withStore(s db.Store) Option {
	return func(c *clientConfig) {
		c.store = s
	}
}
