package assistant

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	"github.com/kailas-cloud/storeqa/internal/domain/sizing"
	"github.com/kailas-cloud/storeqa/internal/logger"
	"github.com/kailas-cloud/storeqa/internal/metrics"
)

// MaxSources caps the evidence urls cited in a reply.
const MaxSources = 4

// Answer is the pipeline outcome before text generation. Size is set on the sizing branch;
// otherwise Evidence and Context carry the grounding (both empty when nothing was found).
type Answer struct {
	Intent   intent.Tag
	Size     *SizeAnswer
	Evidence []evidence.Item
	Context  string
	Term     string
}

// Source is one cited evidence url.
type Source struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// Reply is the customer-facing answer.
type Reply struct {
	Text           string
	Intent         intent.Tag
	Sources        []Source
	Recommendation *sizing.Recommendation
	// Fallback marks a canned reply used instead of a generated one.
	Fallback bool
}

// Service answers storefront questions: sizing questions from the size chart, everything
// else from retrieved site text through the completion service.
type Service struct {
	retriever Retriever
	completer Completer
	chart     sizing.Chart
	persona   Persona
}

// New creates an assistant service. A nil chart uses sizing.DefaultChart.
func New(retriever Retriever, completer Completer, chart sizing.Chart, persona Persona) (*Service, error) {
	if chart == nil {
		chart = sizing.DefaultChart()
	}
	if err := chart.Validate(); err != nil {
		return nil, fmt.Errorf("size chart: %w", err)
	}
	if persona.Name == "" || persona.Brand == "" {
		def := DefaultPersona()
		if persona.Name == "" {
			persona.Name = def.Name
		}
		if persona.Brand == "" {
			persona.Brand = def.Brand
		}
	}
	return &Service{retriever: retriever, completer: completer, chart: chart, persona: persona}, nil
}

// Handle classifies message and gathers what a reply needs. A blank message is the only
// error; upstream failures degrade to an empty evidence set.
func (s *Service) Handle(ctx context.Context, message string) (Answer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return Answer{}, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}

	tag := intent.Classify(message)
	if tag == intent.Sizing {
		if size, ok := s.sizeFromMessage(message); ok {
			return Answer{Intent: tag, Size: &size}, nil
		}
	}

	res, err := s.retriever.Retrieve(ctx, message, tag)
	if err != nil {
		return Answer{}, fmt.Errorf("retrieve: %w", err)
	}

	return Answer{Intent: tag, Evidence: res.Items, Context: res.Context, Term: res.Term}, nil
}

// Reply answers message in text. Only a blank message is an error; a failed or empty
// completion yields the fallback reply.
func (s *Service) Reply(ctx context.Context, message string) (Reply, error) {
	ans, err := s.Handle(ctx, message)
	if err != nil {
		return Reply{}, err
	}
	log := logger.FromContext(ctx)

	if ans.Size != nil {
		metrics.AssistantRepliesTotal.WithLabelValues(string(ans.Intent), "sizing").Inc()
		return Reply{
			Text:           ans.Size.Text,
			Intent:         ans.Intent,
			Recommendation: ans.Size.Recommendation,
			Fallback:       ans.Size.Recommendation == nil,
		}, nil
	}

	if ans.Context == "" {
		metrics.AssistantRepliesTotal.WithLabelValues(string(ans.Intent), "fallback").Inc()
		text := FallbackReply
		if ans.Intent == intent.Sizing {
			text = AskMeasurementsReply
		}
		return Reply{Text: text, Intent: ans.Intent, Fallback: true}, nil
	}

	sources := topSources(ans.Evidence)

	text, err := s.completer.Complete(ctx, s.persona.SystemPrompt(), UserPrompt(strings.TrimSpace(message), ans.Context))
	text = strings.TrimSpace(text)
	if err != nil || text == "" {
		if err != nil {
			log.Warn("Completion failed, using fallback reply",
				zap.String("intent", string(ans.Intent)),
				zap.Error(err),
			)
		}
		metrics.AssistantRepliesTotal.WithLabelValues(string(ans.Intent), "fallback").Inc()
		return Reply{Text: FallbackReply, Intent: ans.Intent, Sources: sources, Fallback: true}, nil
	}

	metrics.AssistantRepliesTotal.WithLabelValues(string(ans.Intent), "answered").Inc()
	return Reply{Text: text, Intent: ans.Intent, Sources: sources}, nil
}

func topSources(items []evidence.Item) []Source {
	n := min(len(items), MaxSources)
	out := make([]Source, 0, n)
	for _, it := range items[:n] {
		out = append(out, Source{URL: it.URL(), Score: it.Score()})
	}
	return out
}
