package catalog

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/storeqa/internal/db"
	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
)

// NearestChunks returns up to count chunks whose cosine similarity to vector is at least floor,
// most similar first.
func (r *Repo) NearestChunks(ctx context.Context, vector []float32, count int, floor float64) ([]evidence.Hit, error) {
	q := &db.KNNQuery{
		Collection:    domain.CollectionChunks,
		VectorField:   domain.FieldEmbedding,
		Vector:        vector,
		K:             count,
		ReturnFields:  []string{domain.FieldURL, domain.FieldContent},
		MinSimilarity: floor,
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search chunks knn: %w", err)
	}

	return toHits(sr, true), nil
}

// SearchPages matches term against page urls and titles.
func (r *Repo) SearchPages(ctx context.Context, term string, limit int) ([]evidence.Hit, error) {
	q := &db.TextQuery{
		Collection:   domain.CollectionPages,
		Term:         term,
		Fields:       []string{domain.FieldURL, domain.FieldTitle},
		Limit:        limit,
		ReturnFields: []string{domain.FieldURL, domain.FieldTitle},
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search pages text: %w", err)
	}

	return toHits(sr, false), nil
}

// SearchChunks matches term against chunk content.
func (r *Repo) SearchChunks(ctx context.Context, term string, limit int) ([]evidence.Hit, error) {
	q := &db.TextQuery{
		Collection:   domain.CollectionChunks,
		Term:         term,
		Fields:       []string{domain.FieldContent},
		Limit:        limit,
		ReturnFields: []string{domain.FieldURL, domain.FieldContent},
	}

	sr, err := r.store.SearchText(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search chunks text: %w", err)
	}

	return toHits(sr, false), nil
}

// toHits converts store rows into catalog hits. Page rows carry no content, so the
// title stands in for it.
func toHits(sr *db.SearchResult, scored bool) []evidence.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	hits := make([]evidence.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		h := evidence.Hit{
			URL:     e.Fields[domain.FieldURL],
			Title:   e.Fields[domain.FieldTitle],
			Content: e.Fields[domain.FieldContent],
		}
		if h.Content == "" {
			h.Content = h.Title
		}
		if scored {
			h.Similarity = e.Score
		}
		hits = append(hits, h)
	}
	return hits
}
