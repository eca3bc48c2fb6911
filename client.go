package storeqa

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/app"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	healthuc "github.com/kailas-cloud/storeqa/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/storeqa/internal/usecase/ingest"
)

// Client is the storeqa library entry point.
type Client struct {
	app       *app.App
	assistant assistantUseCase
	ingest    ingestUseCase
	health    healthUseCase
}

type assistantUseCase interface {
	Handle(ctx context.Context, message string) (assistantuc.Answer, error)
	Reply(ctx context.Context, message string) (assistantuc.Reply, error)
	RecommendSize(bust, waist, hip float64) (assistantuc.SizeAnswer, error)
}

type ingestUseCase interface {
	Run(ctx context.Context, progress ingestuc.Progress) (ingestuc.Result, error)
	Seed(ctx context.Context, url string) (ingestuc.Result, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// New creates a Client, connects to the catalog store and ensures its schema.
func New(opts ...Option) (*Client, error) {
	c := &clientConfig{}
	for _, o := range opts {
		o(c)
	}

	if c.store == nil && c.cfg.Database.Driver == "" {
		return nil, errors.New("storeqa: catalog store required (use WithRedis or WithPostgres)")
	}
	if c.cfg.Embedding.APIKey == "" && (c.embedder == nil || c.completer == nil) {
		return nil, errors.New("storeqa: OpenAI API key required (use WithOpenAI, or both WithEmbedder and WithCompleter)")
	}

	c.cfg.Sizing.Chart = toChart(c.chart)
	c.cfg.ApplyDefaults()

	logger := c.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var appOpts []app.Option
	if c.store != nil {
		appOpts = append(appOpts, app.WithStore(c.store))
	}
	if c.embedder != nil {
		appOpts = append(appOpts, app.WithEmbedder(&embedderAdapter{inner: c.embedder}))
	}
	if c.completer != nil {
		appOpts = append(appOpts, app.WithCompleter(&completerAdapter{inner: c.completer}))
	}

	a, err := app.New(context.Background(), c.cfg, logger, appOpts...)
	if err != nil {
		return nil, fmt.Errorf("storeqa: %w", err)
	}

	return &Client{
		app:       a,
		assistant: a.Assistant,
		ingest:    a.Ingest,
		health:    a.Health,
	}, nil
}

// Close releases the catalog store connection.
func (c *Client) Close() {
	if c.app != nil {
		c.app.Close()
	}
}

// Handle classifies message and gathers its grounding without generating text.
// Only a blank message is an error.
func (c *Client) Handle(ctx context.Context, message string) (Answer, error) {
	ans, err := c.assistant.Handle(ctx, message)
	if err != nil {
		return Answer{}, fmt.Errorf("handle: %w", err)
	}
	return fromAnswer(ans), nil
}

// Reply answers message. Upstream failures degrade to a fallback reply; only a blank
// message is an error.
func (c *Client) Reply(ctx context.Context, message string) (Reply, error) {
	r, err := c.assistant.Reply(ctx, message)
	if err != nil {
		return Reply{}, fmt.Errorf("reply: %w", err)
	}
	return fromReply(r), nil
}

// RecommendSize picks a size for the given measurements. Values of 60 or more are read as
// centimeters; zero means absent. Returns ErrNoMeasurements when all are zero and
// ErrParse when one is negative.
func (c *Client) RecommendSize(bust, waist, hip float64) (SizeAnswer, error) {
	a, err := c.assistant.RecommendSize(bust, waist, hip)
	if err != nil {
		return SizeAnswer{}, fmt.Errorf("recommend size: %w", err)
	}
	return fromSizeAnswer(a), nil
}

// Ingest crawls the configured sitemaps into the catalog. progress may be nil.
func (c *Client) Ingest(ctx context.Context, progress func(done, total int)) (IngestResult, error) {
	r, err := c.ingest.Run(ctx, progress)
	if err != nil {
		return fromIngest(r), fmt.Errorf("ingest: %w", err)
	}
	return fromIngest(r), nil
}

// Seed ingests a single page.
func (c *Client) Seed(ctx context.Context, url string) (IngestResult, error) {
	r, err := c.ingest.Seed(ctx, url)
	if err != nil {
		return IngestResult{}, fmt.Errorf("seed: %w", err)
	}
	return fromIngest(r), nil
}

// Health checks the health of all system components.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}
