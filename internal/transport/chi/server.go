package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	gochi "github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	"github.com/kailas-cloud/storeqa/internal/domain/sizing"
	"github.com/kailas-cloud/storeqa/internal/logger"
	healthuc "github.com/kailas-cloud/storeqa/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the storefront assistant over HTTP.
type Server struct {
	assistant     Assistant
	retriever     Retriever
	seeder        Seeder
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. seeder may be nil, which leaves
// POST /v1/ingest/page unmounted.
func NewServer(
	assistant Assistant,
	retriever Retriever,
	seeder Seeder,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	s := &Server{
		assistant: assistant,
		retriever: retriever,
		seeder:    seeder,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed),
		sentinelHandler(domain.ErrNoMeasurements, http.StatusUnprocessableEntity, CodeMeasurements),
		sentinelHandler(domain.ErrParse, http.StatusUnprocessableEntity, CodeMeasurements),
		sentinelHandler(domain.ErrUpstream, http.StatusBadGateway, CodeUpstream),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeUpstream),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r gochi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/v1", func(r gochi.Router) {
		r.Post("/chat", s.Chat)
		r.Get("/retrieve", s.Retrieve)
		r.Post("/size", s.RecommendSize)
		r.Get("/size", s.RecommendSizeQuery)
		if s.seeder != nil {
			r.Post("/ingest/page", s.IngestPage)
		}
	})
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}

	question := strings.TrimSpace(req.Question())
	if question == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed,
			"Missing 'message' or 'messages' in request body")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	reply, err := s.assistant.Reply(ctx, question)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)

	resp := ChatResponse{
		Reply:    reply.Text,
		Intent:   string(reply.Intent),
		Sources:  make([]SourceItem, 0, len(reply.Sources)),
		Fallback: reply.Fallback,
	}
	for _, src := range reply.Sources {
		resp.Sources = append(resp.Sources, SourceItem{URL: src.URL, Score: src.Score})
	}
	if reply.Recommendation != nil {
		resp.Recommendation = recommendationToAPI(*reply.Recommendation)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Retrieve handles GET /v1/retrieve?q=...&intent=...
func (s *Server) Retrieve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var q string
	if err := runtime.BindQueryParameter("form", true, true, "q", query, &q); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter q: "+err.Error())
		return
	}
	var tagParam *string
	if err := runtime.BindQueryParameter("form", true, false, "intent", query, &tagParam); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter intent: "+err.Error())
		return
	}

	tag := intent.Classify(q)
	if tagParam != nil {
		tag = intent.Tag(*tagParam)
		if !tag.IsValid() {
			writeError(w, http.StatusBadRequest, CodeValidationFailed, "unknown intent "+strconv.Quote(*tagParam))
			return
		}
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.retriever.Retrieve(ctx, q, tag)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)

	resp := RetrieveResponse{
		Intent:  string(tag),
		Term:    res.Term,
		Items:   make([]EvidenceItem, 0, len(res.Items)),
		Context: res.Context,
	}
	for _, it := range res.Items {
		resp.Items = append(resp.Items, EvidenceItem{
			URL:     it.URL(),
			Score:   it.Score(),
			Origin:  string(it.Origin()),
			Content: it.Content(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecommendSize handles POST /v1/size.
func (s *Server) RecommendSize(w http.ResponseWriter, r *http.Request) {
	var req SizeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	s.recommendSize(w, r, req)
}

// RecommendSizeQuery handles GET /v1/size?bust=..&waist=..&hip=..
func (s *Server) RecommendSizeQuery(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var req SizeRequest
	for name, dst := range map[string]*float64{"bust": &req.Bust, "waist": &req.Waist, "hip": &req.Hip} {
		var v *float64
		if err := runtime.BindQueryParameter("form", true, false, name, query, &v); err != nil {
			writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid format for parameter "+name+": "+err.Error())
			return
		}
		if v != nil {
			*dst = *v
		}
	}
	s.recommendSize(w, r, req)
}

func (s *Server) recommendSize(w http.ResponseWriter, r *http.Request, req SizeRequest) {
	ans, err := s.assistant.RecommendSize(req.Bust, req.Waist, req.Hip)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := SizeResponse{Reply: ans.Text}
	if ans.Recommendation != nil {
		resp.Recommendation = recommendationToAPI(*ans.Recommendation)
	}
	writeJSON(w, http.StatusOK, resp)
}

// IngestPage handles POST /v1/ingest/page.
func (s *Server) IngestPage(w http.ResponseWriter, r *http.Request) {
	var req IngestPageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "url is required")
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	res, err := s.seeder.Seed(ctx, strings.TrimSpace(req.URL))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	setUsageHeaders(w, usage)

	writeJSON(w, http.StatusCreated, IngestPageResponse{
		RunID:      res.RunID,
		URL:        strings.TrimSpace(req.URL),
		Chunks:     res.Chunks,
		DurationMs: res.Duration.Milliseconds(),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func recommendationToAPI(rec sizing.Recommendation) *SizeRecommendation {
	out := &SizeRecommendation{
		Size:        rec.Size,
		Unit:        string(rec.Measurement.Unit),
		Bust:        rec.Measurement.Bust,
		Waist:       rec.Measurement.Waist,
		Hip:         rec.Measurement.Hip,
		Explanation: make([]SizeLine, 0, len(rec.Explanation)),
	}
	for _, l := range rec.Explanation {
		out.Explanation = append(out.Explanation, SizeLine{
			Dimension: l.Dimension,
			Value:     l.Value,
			Range:     l.Range,
			Verdict:   string(l.Verdict),
		})
	}
	return out
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	if n := usage.EmbeddingTokens(); n > 0 {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(n))
	}
	if n := usage.VectorCalls(); n > 0 {
		w.Header().Set("X-Vector-Calls", strconv.Itoa(n))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrValidation,
		domain.ErrNoMeasurements,
		domain.ErrParse,
		domain.ErrEmbeddingProviderError,
		domain.ErrUpstream,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}
