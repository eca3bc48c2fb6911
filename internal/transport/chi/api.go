package chi

import "github.com/kailas-cloud/storeqa/internal/domain/sizing"

// ErrorCode is the machine-readable error kind in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthorized     ErrorCode = "unauthorized"
	CodeMeasurements     ErrorCode = "measurements_invalid"
	CodeUpstream         ErrorCode = "upstream_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ChatMessage is one turn of a client-side conversation thread.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest accepts either a single message or a thread whose last turn is answered.
type ChatRequest struct {
	Message  string        `json:"message,omitempty"`
	Messages []ChatMessage `json:"messages,omitempty"`
}

// Question returns the message to answer.
func (r ChatRequest) Question() string {
	if r.Message != "" || len(r.Messages) == 0 {
		return r.Message
	}
	return r.Messages[len(r.Messages)-1].Content
}

// SourceItem is one cited page.
type SourceItem struct {
	URL   string  `json:"url"`
	Score float64 `json:"score"`
}

// ChatResponse is the assistant's answer.
type ChatResponse struct {
	Reply          string              `json:"reply"`
	Intent         string              `json:"intent"`
	Sources        []SourceItem        `json:"sources"`
	Recommendation *SizeRecommendation `json:"recommendation,omitempty"`
	Fallback       bool                `json:"fallback"`
}

// EvidenceItem is one merged retrieval result.
type EvidenceItem struct {
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Origin  string  `json:"origin"`
	Content string  `json:"content"`
}

// RetrieveResponse exposes the evidence behind an answer.
type RetrieveResponse struct {
	Intent  string         `json:"intent"`
	Term    string         `json:"term,omitempty"`
	Items   []EvidenceItem `json:"items"`
	Context string         `json:"context"`
}

// SizeRequest carries body measurements. Values of 60 or more are read as centimeters.
type SizeRequest struct {
	Bust  float64 `json:"bust"`
	Waist float64 `json:"waist"`
	Hip   float64 `json:"hip"`
}

// SizeLine explains one dimension against the recommended size.
type SizeLine struct {
	Dimension string       `json:"dimension"`
	Value     float64      `json:"value"`
	Range     sizing.Range `json:"range"`
	Verdict   string       `json:"verdict"`
}

// SizeRecommendation is the chosen size with its explanation.
type SizeRecommendation struct {
	Size        string     `json:"size"`
	Unit        string     `json:"unit"`
	Bust        float64    `json:"bust,omitempty"`
	Waist       float64    `json:"waist,omitempty"`
	Hip         float64    `json:"hip,omitempty"`
	Explanation []SizeLine `json:"explanation"`
}

// SizeResponse is the size engine's answer.
type SizeResponse struct {
	Reply          string              `json:"reply"`
	Recommendation *SizeRecommendation `json:"recommendation,omitempty"`
}

// IngestPageRequest asks to crawl one url into the catalog.
type IngestPageRequest struct {
	URL string `json:"url"`
}

// IngestPageResponse summarizes a single-page ingest.
type IngestPageResponse struct {
	RunID      string `json:"run_id"`
	URL        string `json:"url"`
	Chunks     int    `json:"chunks"`
	DurationMs int64  `json:"duration_ms"`
}

// HealthResponse reports component health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
