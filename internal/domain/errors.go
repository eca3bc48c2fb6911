package domain

import "errors"

var (
	// ErrValidation signals a missing or malformed inbound message. The only error that
	// reaches the caller of the assistant pipeline.
	ErrValidation = errors.New("validation failed")
	// ErrUpstream signals a failed or timed-out call to an external collaborator
	// (embedding, vector search, keyword search, completion).
	ErrUpstream = errors.New("upstream call failed")
	// ErrParse signals measurement keywords without a usable numeral.
	ErrParse = errors.New("measurements unparseable")
	// ErrNoMeasurements signals a sizing request without any measurements.
	ErrNoMeasurements = errors.New("no measurements present")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrCompletionProviderError signals a completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
)
