package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	"github.com/kailas-cloud/storeqa/internal/logger"
	"github.com/kailas-cloud/storeqa/internal/metrics"
)

// Result is the evidence gathered for one question.
type Result struct {
	Items   []evidence.Item
	Context string
	Term    string
}

// Service collects hybrid evidence: adaptive vector search alongside keyword search over
// pages and chunks, merged and rendered into a bounded context block.
type Service struct {
	catalog Catalog
	embed   Embedder
	cfg     Config
}

// New creates a retrieval service. cfg must pass Validate.
func New(catalog Catalog, embed Embedder, cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("retrieval config: %w", err)
	}
	return &Service{catalog: catalog, embed: embed, cfg: cfg}, nil
}

// Retrieve gathers evidence for message. Upstream failures degrade the evidence set and
// are never returned; only a blank message is an error.
func (s *Service) Retrieve(ctx context.Context, message string, tag intent.Tag) (Result, error) {
	if strings.TrimSpace(message) == "" {
		return Result{}, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	term := LexicalTerm(tag, message)

	var vectorHits, pageHits, chunkHits []evidence.Hit
	var g errgroup.Group

	g.Go(func() error {
		vectorHits = s.vectorHits(ctx, message)
		return nil
	})
	if term != "" && s.cfg.LexicalLimit > 0 {
		g.Go(func() error {
			pageHits = s.lexical(ctx, domain.CollectionPages, term, s.catalog.SearchPages)
			return nil
		})
		g.Go(func() error {
			chunkHits = s.lexical(ctx, domain.CollectionChunks, term, s.catalog.SearchChunks)
			return nil
		})
	}
	_ = g.Wait()

	items := Merge(&s.cfg.Scoring, vectorHits, pageHits, chunkHits, s.cfg.MaxEvidence)
	metrics.RetrievalEvidenceItems.Observe(float64(len(items)))

	logger.FromContext(ctx).Debug("Evidence collected",
		zap.String("intent", string(tag)),
		zap.String("term", term),
		zap.Int("vector_hits", len(vectorHits)),
		zap.Int("page_hits", len(pageHits)),
		zap.Int("chunk_hits", len(chunkHits)),
		zap.Int("items", len(items)),
	)

	return Result{
		Items:   items,
		Context: BuildContext(items, s.cfg.PerItemChars, s.cfg.TotalChars),
		Term:    term,
	}, nil
}

// vectorHits embeds message and walks the similarity tiers. The first tier escalates when
// it returns fewer than two hits, later tiers when they return none. Each retry replaces
// the previous hits; a failed call ends the walk with what was gathered so far.
func (s *Service) vectorHits(ctx context.Context, message string) []evidence.Hit {
	log := logger.FromContext(ctx)

	embCtx, cancel := s.callContext(ctx)
	emb, err := s.embed.Embed(embCtx, message)
	cancel()
	if err != nil {
		log.Warn("Query embedding failed, skipping vector search", zap.Error(err))
		return nil
	}

	var hits []evidence.Hit
	for tier := range s.cfg.FloorTiers {
		if tier > 0 && !shouldEscalate(tier-1, len(hits)) {
			break
		}

		callCtx, cancel := s.callContext(ctx)
		found, err := s.catalog.NearestChunks(callCtx, emb.Embedding, s.cfg.CountTiers[tier], s.cfg.FloorTiers[tier])
		cancel()

		domain.UsageFromContext(ctx).AddVectorCall()
		label := strconv.Itoa(tier + 1)
		if err != nil {
			metrics.RetrievalVectorCallsTotal.WithLabelValues(label, "error").Inc()
			log.Warn("Vector search failed",
				zap.Int("tier", tier+1),
				zap.Error(fmt.Errorf("%w: %w", domain.ErrUpstream, err)),
			)
			break
		}
		metrics.RetrievalVectorCallsTotal.WithLabelValues(label, "ok").Inc()
		hits = found
	}
	return hits
}

// shouldEscalate reports whether the tier after tier runs, given n hits from tier.
func shouldEscalate(tier, n int) bool {
	if tier == 0 {
		return n < 2
	}
	return n == 0
}

type keywordSearch func(ctx context.Context, term string, limit int) ([]evidence.Hit, error)

// lexical runs one keyword search. Failures become no hits.
func (s *Service) lexical(ctx context.Context, collection, term string, search keywordSearch) []evidence.Hit {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	domain.UsageFromContext(ctx).AddLexicalCall()
	hits, err := search(callCtx, term, s.cfg.LexicalLimit)
	if err != nil {
		metrics.RetrievalLexicalFailuresTotal.WithLabelValues(collection).Inc()
		logger.FromContext(ctx).Warn("Keyword search failed",
			zap.String("collection", collection),
			zap.String("term", term),
			zap.Error(err),
		)
		return nil
	}
	return hits
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.CallTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.cfg.CallTimeout)
}
