package chi

import (
	"context"

	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/storeqa/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/storeqa/internal/usecase/ingest"
	retrievaluc "github.com/kailas-cloud/storeqa/internal/usecase/retrieval"
)

// Assistant answers customer questions and recommends sizes.
type Assistant interface {
	Reply(ctx context.Context, message string) (assistantuc.Reply, error)
	RecommendSize(bust, waist, hip float64) (assistantuc.SizeAnswer, error)
}

// Retriever exposes the evidence collection step.
type Retriever interface {
	Retrieve(ctx context.Context, message string, tag intent.Tag) (retrievaluc.Result, error)
}

// Seeder ingests a single page.
type Seeder interface {
	Seed(ctx context.Context, url string) (ingestuc.Result, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
