package storeqa

import "github.com/kailas-cloud/storeqa/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrValidation             = domain.ErrValidation
	ErrUpstream               = domain.ErrUpstream
	ErrParse                  = domain.ErrParse
	ErrNoMeasurements         = domain.ErrNoMeasurements
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)
