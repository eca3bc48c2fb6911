package assistant

import (
	"context"

	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	"github.com/kailas-cloud/storeqa/internal/usecase/retrieval"
)

// Retriever gathers grounding evidence for a question.
type Retriever interface {
	Retrieve(ctx context.Context, message string, tag intent.Tag) (retrieval.Result, error)
}

// Completer generates a reply from a system prompt and a user prompt.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}
