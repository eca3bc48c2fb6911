package storeqa

import (
	"time"

	"github.com/kailas-cloud/storeqa/internal/domain/evidence"
	"github.com/kailas-cloud/storeqa/internal/domain/sizing"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	ingestuc "github.com/kailas-cloud/storeqa/internal/usecase/ingest"
)

// Intents a question can be classified as.
const (
	IntentSizing   = "sizing"
	IntentDelivery = "delivery"
	IntentReturns  = "returns"
	IntentOrdering = "ordering"
	IntentPayments = "payments"
	IntentPromo    = "promo"
	IntentContact  = "contact"
	IntentGeneral  = "general"
)

// Range is an inclusive measurement range in inches.
type Range struct {
	Min float64
	Max float64
}

// SizeRow is one size of a size chart.
type SizeRow struct {
	Size  string
	Bust  Range
	Waist Range
	Hip   Range
}

// SizeLine explains one measured dimension against the recommended size.
// Verdict is "below", "inside" or "above".
type SizeLine struct {
	Dimension string
	Value     float64
	Range     Range
	Verdict   string
	Text      string
}

// SizeRecommendation is the best-fit size for a set of measurements (in inches).
type SizeRecommendation struct {
	Size        string
	Bust        float64
	Waist       float64
	Hip         float64
	Explanation []SizeLine
}

// SizeAnswer is the result of RecommendSize. Recommendation is nil when no size could be
// chosen; Text then asks for measurements.
type SizeAnswer struct {
	Text           string
	Recommendation *SizeRecommendation
}

// Source is one cited evidence url.
type Source struct {
	URL   string
	Score float64
}

// Reply is the customer-facing answer.
type Reply struct {
	Text           string
	Intent         string
	Sources        []Source
	Recommendation *SizeRecommendation
	// Fallback marks a canned reply used instead of a generated one.
	Fallback bool
}

// Evidence is one ranked snippet that grounds a reply.
type Evidence struct {
	URL     string
	Content string
	Score   float64
	// Origin is "vector", "lexical-page" or "lexical-chunk".
	Origin string
}

// Answer is the outcome of Handle: the classification and the grounding gathered for it,
// before any text generation.
type Answer struct {
	Intent   string
	Size     *SizeAnswer
	Evidence []Evidence
	Context  string
	Term     string
}

// IngestResult summarizes an ingestion run.
type IngestResult struct {
	RunID    string
	Pages    int
	Chunks   int
	Skipped  int
	Failed   int
	Duration time.Duration
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            // "ok", "degraded", "error"
	Checks map[string]string // component → "ok"/"error"
}

func toChart(rows []SizeRow) sizing.Chart {
	if len(rows) == 0 {
		return nil
	}
	chart := make(sizing.Chart, len(rows))
	for i, r := range rows {
		chart[i] = sizing.Row{
			Size:  r.Size,
			Bust:  sizing.Range{Min: r.Bust.Min, Max: r.Bust.Max},
			Waist: sizing.Range{Min: r.Waist.Min, Max: r.Waist.Max},
			Hip:   sizing.Range{Min: r.Hip.Min, Max: r.Hip.Max},
		}
	}
	return chart
}

func fromRecommendation(rec *sizing.Recommendation) *SizeRecommendation {
	if rec == nil {
		return nil
	}
	out := &SizeRecommendation{
		Size:        rec.Size,
		Bust:        rec.Measurement.Bust,
		Waist:       rec.Measurement.Waist,
		Hip:         rec.Measurement.Hip,
		Explanation: make([]SizeLine, 0, len(rec.Explanation)),
	}
	for _, l := range rec.Explanation {
		out.Explanation = append(out.Explanation, SizeLine{
			Dimension: l.Dimension,
			Value:     l.Value,
			Range:     Range{Min: l.Range.Min, Max: l.Range.Max},
			Verdict:   string(l.Verdict),
			Text:      l.String(),
		})
	}
	return out
}

func fromSizeAnswer(a assistantuc.SizeAnswer) SizeAnswer {
	return SizeAnswer{Text: a.Text, Recommendation: fromRecommendation(a.Recommendation)}
}

func fromReply(r assistantuc.Reply) Reply {
	out := Reply{
		Text:           r.Text,
		Intent:         string(r.Intent),
		Recommendation: fromRecommendation(r.Recommendation),
		Fallback:       r.Fallback,
	}
	for _, s := range r.Sources {
		out.Sources = append(out.Sources, Source{URL: s.URL, Score: s.Score})
	}
	return out
}

func fromEvidence(items []evidence.Item) []Evidence {
	out := make([]Evidence, 0, len(items))
	for _, it := range items {
		out = append(out, Evidence{
			URL:     it.URL(),
			Content: it.Content(),
			Score:   it.Score(),
			Origin:  string(it.Origin()),
		})
	}
	return out
}

func fromAnswer(a assistantuc.Answer) Answer {
	out := Answer{
		Intent:   string(a.Intent),
		Evidence: fromEvidence(a.Evidence),
		Context:  a.Context,
		Term:     a.Term,
	}
	if a.Size != nil {
		size := fromSizeAnswer(*a.Size)
		out.Size = &size
	}
	return out
}

func fromIngest(r ingestuc.Result) IngestResult {
	return IngestResult{
		RunID:    r.RunID,
		Pages:    r.Pages,
		Chunks:   r.Chunks,
		Skipped:  r.Skipped,
		Failed:   r.Failed,
		Duration: r.Duration,
	}
}
