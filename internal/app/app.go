// Package app is the composition root shared by the storeqa binaries and the library.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/config"
	"github.com/kailas-cloud/storeqa/internal/db"
	dbPostgres "github.com/kailas-cloud/storeqa/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/storeqa/internal/db/redis"
	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/metrics"
	"github.com/kailas-cloud/storeqa/internal/repository/catalog"
	"github.com/kailas-cloud/storeqa/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/storeqa/internal/transport/openai"
	"github.com/kailas-cloud/storeqa/internal/transport/web"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	embeddinguc "github.com/kailas-cloud/storeqa/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/storeqa/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/storeqa/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/storeqa/internal/usecase/retrieval"
)

// App holds the wired services. Close releases the catalog store.
type App struct {
	Store     db.Store
	Catalog   *catalog.Repo
	Embedder  domain.Embedder
	Retriever *retrievaluc.Service
	Assistant *assistantuc.Service
	Ingest    *ingestuc.Service
	Health    *healthuc.Service

	ownsStore bool
}

// Completer is the chat completion contract the assistant needs.
type Completer interface {
	assistantuc.Completer
	healthuc.Checker
}

// Option overrides a collaborator built from configuration.
type Option func(*options)

type options struct {
	store     db.Store
	embedder  domain.Embedder
	completer Completer
	fetcher   ingestuc.Fetcher
}

// WithStore uses s instead of connecting to the configured database. The caller keeps
// ownership of s.
func WithStore(s db.Store) Option {
	return func(o *options) { o.store = s }
}

// WithEmbedder replaces the provider embedder. Caching and instrumentation still apply.
func WithEmbedder(e domain.Embedder) Option {
	return func(o *options) { o.embedder = e }
}

// WithCompleter replaces the chat completion client.
func WithCompleter(c Completer) Option {
	return func(o *options) { o.completer = c }
}

// WithFetcher replaces the page fetcher used by ingestion.
func WithFetcher(f ingestuc.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// New connects the catalog store, ensures its schema and wires every service.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	a := &App{Store: o.store}
	if a.Store == nil {
		store, err := OpenStore(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		a.Store = store
		a.ownsStore = true
	}

	if err := a.wire(ctx, cfg, logger, o); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// OpenStore creates the configured catalog store and waits until it answers.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case config.DriverRedis:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
	case config.DriverPostgres:
		store, err = dbPostgres.NewStore(dbPostgres.Config{
			DSN:          cfg.DSN,
			MaxOpenConns: cfg.MaxOpenConns,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s store: %w", cfg.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

func (a *App) wire(ctx context.Context, cfg config.Config, logger *zap.Logger, o options) error {
	a.Catalog = catalog.New(a.Store, cfg.Embedding.Dimensions).WithHNSW(catalog.HNSWConfig{
		M:           cfg.Database.HNSWM,
		EFConstruct: cfg.Database.HNSWEFConstruct,
	})
	if err := a.Catalog.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure catalog schema: %w", err)
	}

	base := o.embedder
	if base == nil {
		base = openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Logger:     logger,
		})
	}
	a.Embedder = BuildEmbedder(base, a.Store, cfg.Embedding, logger)

	completer := o.completer
	if completer == nil {
		completer = NewCompleter(cfg.Completion, logger)
	}

	retriever, err := retrievaluc.New(a.Catalog, a.Embedder, RetrievalConfig(cfg.Retrieval))
	if err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	a.Retriever = retriever

	chart, err := cfg.Sizing.LoadChart()
	if err != nil {
		return err
	}
	asst, err := assistantuc.New(a.Retriever, completer, chart, assistantuc.Persona{
		Name:  cfg.Assistant.Name,
		Brand: cfg.Assistant.Brand,
	})
	if err != nil {
		return fmt.Errorf("assistant: %w", err)
	}
	a.Assistant = asst

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = web.NewFetcher(web.FetcherConfig{
			Timeout:   time.Duration(cfg.Ingest.FetchTimeoutSec) * time.Second,
			UserAgent: cfg.Ingest.UserAgent,
			Logger:    logger,
		})
	}
	ing, err := ingestuc.New(fetcher, a.Catalog, a.Embedder, IngestConfig(cfg.Ingest))
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	a.Ingest = ing

	healthOpts := []healthuc.Option{
		healthuc.WithCompletion(completer),
		healthuc.WithTimeout(5 * time.Second),
	}
	if hc, ok := base.(domain.HealthChecker); ok {
		healthOpts = append(healthOpts, healthuc.WithEmbedding(hc))
	}
	a.Health = healthuc.New(a.Store, healthOpts...)

	logger.Info("storeqa wired",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Bool("embedding_cache", cfg.Embedding.Cache.Enabled),
		zap.String("completion_model", cfg.Completion.Model),
	)
	return nil
}

// Close releases the catalog store when App opened it.
func (a *App) Close() {
	if a == nil || a.Store == nil || !a.ownsStore {
		return
	}
	a.Store.Close()
	a.ownsStore = false
}

// BuildEmbedder assembles the decorator chain: provider -> cache -> instrumented.
func BuildEmbedder(base domain.Embedder, kv db.KVStore, cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	embedder := base
	if cfg.Cache.Enabled && kv != nil {
		embedder = embcache.New(base, kv, metrics.EmbeddingCacheTotal, logger,
			embcache.WithTTL(time.Duration(cfg.Cache.TTLHours)*time.Hour),
			embcache.WithModel(cfg.Model),
		)
	}
	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Provider, cfg.Model,
		time.Duration(cfg.TimeoutSec)*time.Second, logger,
	)
}

// NewCompleter creates the OpenAI-compatible chat completion client.
func NewCompleter(cfg config.CompletionConfig, logger *zap.Logger) *openaiTransport.Completer {
	var temperature float32
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:      cfg.APIKey,
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		Temperature: temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:      logger,
	})
}

// RetrievalConfig overlays the non-zero configured values on retrieval.DefaultConfig.
func RetrievalConfig(c config.RetrievalConfig) retrievaluc.Config {
	out := retrievaluc.DefaultConfig()
	if len(c.FloorTiers) > 0 {
		out.FloorTiers = append([]float64(nil), c.FloorTiers...)
		out.CountTiers = append([]int(nil), c.CountTiers...)
	}
	if c.MaxEvidence > 0 {
		out.MaxEvidence = c.MaxEvidence
	}
	if c.PerItemChars > 0 {
		out.PerItemChars = c.PerItemChars
	}
	if c.TotalChars > 0 {
		out.TotalChars = c.TotalChars
	}
	if c.LexicalLimit > 0 {
		out.LexicalLimit = c.LexicalLimit
	}
	if c.CallTimeoutSec > 0 {
		out.CallTimeout = time.Duration(c.CallTimeoutSec) * time.Second
	}
	if c.PageScore > 0 {
		out.Scoring.PageScore = c.PageScore
	}
	if c.ChunkScore > 0 {
		out.Scoring.ChunkScore = c.ChunkScore
	}
	if len(c.Boosts) > 0 {
		out.Scoring.Boosts = make([]retrievaluc.BoostRule, len(c.Boosts))
		for i, b := range c.Boosts {
			out.Scoring.Boosts[i] = retrievaluc.BoostRule{Name: b.Name, Patterns: b.Patterns, Weight: b.Weight}
		}
	}
	return out
}

// IngestConfig overlays the non-zero configured values on ingest.DefaultConfig.
func IngestConfig(c config.IngestConfig) ingestuc.Config {
	out := ingestuc.DefaultConfig()
	if len(c.Sitemaps) > 0 {
		out.Sitemaps = append([]string(nil), c.Sitemaps...)
	}
	if c.Limit > 0 {
		out.Limit = c.Limit
	}
	if c.ChunkSize > 0 {
		out.ChunkSize = c.ChunkSize
	}
	if c.ChunkOverlap > 0 {
		out.ChunkOverlap = c.ChunkOverlap
	}
	if c.BatchSize > 0 {
		out.BatchSize = c.BatchSize
	}
	if c.MinTextChars > 0 {
		out.MinTextChars = c.MinTextChars
	}
	if c.SeedMinTextChars > 0 {
		out.SeedMinTextChars = c.SeedMinTextChars
	}
	if c.MaxSitemapDepth > 0 {
		out.MaxSitemapDepth = c.MaxSitemapDepth
	}
	return out
}
