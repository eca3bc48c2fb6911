package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/page"
	"github.com/kailas-cloud/storeqa/internal/logger"
	"github.com/kailas-cloud/storeqa/internal/metrics"
)

// Progress is notified after every processed url.
type Progress func(done, total int)

// Result summarizes one ingest run.
type Result struct {
	RunID    string
	Pages    int
	Chunks   int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// Service crawls storefront pages into the catalog.
type Service struct {
	fetch   Fetcher
	catalog Catalog
	embed   domain.Embedder
	cfg     Config
	now     func() time.Time
}

// Option configures the ingest service.
type Option func(*Service)

// WithClock overrides the time source used for crawl timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates an ingest service. cfg must pass Validate.
func New(fetch Fetcher, catalog Catalog, embed domain.Embedder, cfg Config, opts ...Option) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ingest config: %w", err)
	}
	s := &Service{fetch: fetch, catalog: catalog, embed: embed, cfg: cfg, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Run ingests up to cfg.Limit pages listed in the configured sitemaps.
// Individual page failures are logged and counted; the run continues.
func (s *Service) Run(ctx context.Context, progress Progress) (Result, error) {
	started := s.now()
	res := Result{RunID: uuid.NewString()}
	ctx, log := logger.With(ctx, zap.String("run_id", res.RunID))

	urls, err := s.URLs(ctx, s.cfg.Sitemaps, s.cfg.Limit)
	if err != nil {
		return res, err
	}
	log.Info("Ingest started", zap.Int("urls", len(urls)))

	for i, u := range urls {
		if err := ctx.Err(); err != nil {
			res.Duration = s.now().Sub(started)
			return res, fmt.Errorf("ingest interrupted: %w", err)
		}

		chunks, err := s.ingestPage(ctx, u, s.cfg.MinTextChars)
		switch {
		case errors.Is(err, errTooShort):
			res.Skipped++
			metrics.IngestPagesTotal.WithLabelValues("skipped").Inc()
			log.Debug("Page skipped", zap.String("url", u), zap.Error(err))
		case err != nil:
			res.Failed++
			metrics.IngestPagesTotal.WithLabelValues("failed").Inc()
			log.Warn("Page failed", zap.String("url", u), zap.Error(err))
		default:
			res.Pages++
			res.Chunks += chunks
			metrics.IngestPagesTotal.WithLabelValues("stored").Inc()
		}

		if progress != nil {
			progress(i+1, len(urls))
		}
	}

	res.Duration = s.now().Sub(started)
	log.Info("Ingest finished",
		zap.Int("pages", res.Pages),
		zap.Int("chunks", res.Chunks),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// Seed ingests a single url. Unlike Run, every failure is returned.
func (s *Service) Seed(ctx context.Context, url string) (Result, error) {
	started := s.now()
	res := Result{RunID: uuid.NewString()}
	if url == "" {
		return res, fmt.Errorf("%w: url is required", domain.ErrValidation)
	}

	chunks, err := s.ingestPage(ctx, url, s.cfg.SeedMinTextChars)
	res.Duration = s.now().Sub(started)
	if err != nil {
		if errors.Is(err, errTooShort) {
			metrics.IngestPagesTotal.WithLabelValues("skipped").Inc()
			return res, fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		metrics.IngestPagesTotal.WithLabelValues("failed").Inc()
		return res, err
	}

	metrics.IngestPagesTotal.WithLabelValues("stored").Inc()
	res.Pages = 1
	res.Chunks = chunks
	logger.FromContext(ctx).Info("Page seeded",
		zap.String("url", url),
		zap.Int("chunks", chunks),
	)
	return res, nil
}

// URLs expands sitemaps into at most limit unique page urls, in document order.
// A failed sitemap is logged and skipped; an error is returned only when every root fails.
func (s *Service) URLs(ctx context.Context, sitemaps []string, limit int) ([]string, error) {
	log := logger.FromContext(ctx)
	seen := make(map[string]struct{})
	visited := make(map[string]struct{})
	var out []string
	var failed int

	var walk func(loc string, depth int) error
	walk = func(loc string, depth int) error {
		if _, ok := visited[loc]; ok {
			return nil
		}
		visited[loc] = struct{}{}

		data, err := s.fetch.Fetch(ctx, loc)
		if err != nil {
			return fmt.Errorf("fetch sitemap %s: %w", loc, err)
		}
		pages, children, err := parseSitemap(data)
		if err != nil {
			return fmt.Errorf("sitemap %s: %w", loc, err)
		}

		for _, p := range pages {
			if len(out) >= limit {
				return nil
			}
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
		if depth >= s.cfg.MaxSitemapDepth {
			return nil
		}
		for _, c := range children {
			if len(out) >= limit {
				return nil
			}
			if err := walk(c, depth+1); err != nil {
				log.Warn("Child sitemap failed", zap.String("sitemap", c), zap.Error(err))
			}
		}
		return nil
	}

	for _, sm := range sitemaps {
		if len(out) >= limit {
			break
		}
		if err := walk(sm, 1); err != nil {
			failed++
			log.Warn("Sitemap failed", zap.String("sitemap", sm), zap.Error(err))
		}
	}

	if len(sitemaps) > 0 && failed == len(sitemaps) {
		return nil, fmt.Errorf("%w: no sitemap could be read", domain.ErrUpstream)
	}
	return out, nil
}

var errTooShort = errors.New("page text too short")

// ingestPage fetches, stores and embeds one page. Returns the number of chunks written.
func (s *Service) ingestPage(ctx context.Context, url string, minChars int) (int, error) {
	body, err := s.fetch.Fetch(ctx, url)
	if err != nil {
		return 0, fmt.Errorf("fetch page: %w", err)
	}
	title, text, err := page.Extract(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("extract page: %w", err)
	}
	if n := utf8.RuneCountInString(text); n < minChars {
		return 0, fmt.Errorf("%w: %d < %d chars", errTooShort, n, minChars)
	}

	if title == "" {
		title = url
	}

	if err := s.catalog.UpsertPage(ctx, page.Page{
		URL:       url,
		Title:     title,
		Text:      text,
		CrawledAt: s.now(),
	}); err != nil {
		return 0, fmt.Errorf("store page: %w", err)
	}

	parts := page.Split(text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	written := 0
	for start := 0; start < len(parts); start += s.cfg.BatchSize {
		end := min(len(parts), start+s.cfg.BatchSize)
		batch := parts[start:end]

		emb, err := domain.EmbedBatch(ctx, s.embed, batch)
		if err != nil {
			return written, fmt.Errorf("embed chunks %d-%d: %w", start, end, err)
		}
		if len(emb.Embeddings) != len(batch) {
			return written, fmt.Errorf("embed chunks: got %d vectors for %d texts",
				len(emb.Embeddings), len(batch))
		}

		chunks := make([]page.Chunk, len(batch))
		for i, content := range batch {
			chunks[i] = page.Chunk{
				URL:       url,
				Index:     start + i,
				Content:   content,
				Embedding: emb.Embeddings[i],
			}
		}
		if err := s.catalog.InsertChunks(ctx, chunks); err != nil {
			return written, fmt.Errorf("store chunks from %d: %w", start, err)
		}
		written += len(chunks)
	}
	return written, nil
}
