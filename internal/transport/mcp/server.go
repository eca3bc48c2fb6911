package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/kailas-cloud/storeqa/internal/domain"
	"github.com/kailas-cloud/storeqa/internal/domain/intent"
	"github.com/kailas-cloud/storeqa/internal/logger"
	assistantuc "github.com/kailas-cloud/storeqa/internal/usecase/assistant"
	retrievaluc "github.com/kailas-cloud/storeqa/internal/usecase/retrieval"
)

// Tool names.
const (
	ToolSearchSite    = "search_site"
	ToolRecommendSize = "recommend_size"
	ToolAsk           = "ask"
)

// Assistant answers questions and recommends sizes.
type Assistant interface {
	Reply(ctx context.Context, message string) (assistantuc.Reply, error)
	RecommendSize(bust, waist, hip float64) (assistantuc.SizeAnswer, error)
}

// Retriever collects site evidence.
type Retriever interface {
	Retrieve(ctx context.Context, message string, tag intent.Tag) (retrievaluc.Result, error)
}

// Server exposes the assistant as MCP tools.
type Server struct {
	assistant Assistant
	retriever Retriever
	logger    *zap.Logger
	mcp       *server.MCPServer
}

// NewServer creates an MCP server with the search_site, recommend_size and ask tools.
func NewServer(assistant Assistant, retriever Retriever, version string, logger *zap.Logger) *Server {
	s := &Server{
		assistant: assistant,
		retriever: retriever,
		logger:    logger,
		mcp: server.NewMCPServer("storeqa", version,
			server.WithToolCapabilities(false),
			server.WithInstructions("Storefront assistant: search the store's pages, recommend a size from body measurements, or ask a customer question."),
		),
	}

	s.mcp.AddTool(
		mcpgo.NewTool(ToolSearchSite,
			mcpgo.WithDescription("Search the storefront's pages and return the merged evidence with urls and scores"),
			mcpgo.WithString("query", mcpgo.Required(), mcpgo.Description("Customer question or search text")),
			mcpgo.WithString("intent", mcpgo.Description("Optional intent override: sizing, delivery, returns, ordering, payments, promo, contact, general")),
		),
		s.handleSearchSite,
	)
	s.mcp.AddTool(
		mcpgo.NewTool(ToolRecommendSize,
			mcpgo.WithDescription("Recommend a swimwear size from bust, waist and hip measurements (inches, or centimeters when any value is 60 or more)"),
			mcpgo.WithNumber("bust", mcpgo.Description("Bust measurement")),
			mcpgo.WithNumber("waist", mcpgo.Description("Waist measurement")),
			mcpgo.WithNumber("hip", mcpgo.Description("Hip measurement")),
		),
		s.handleRecommendSize,
	)
	s.mcp.AddTool(
		mcpgo.NewTool(ToolAsk,
			mcpgo.WithDescription("Ask the storefront assistant a customer question and get a grounded reply with sources"),
			mcpgo.WithString("message", mcpgo.Required(), mcpgo.Description("The customer's question")),
		),
		s.handleAsk,
	)

	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve speaks MCP over the given stdio pair until ctx is done or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(zap.NewStdLog(s.logger))
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve mcp: %w", err)
	}
	return nil
}

type searchItem struct {
	URL     string  `json:"url"`
	Score   float64 `json:"score"`
	Origin  string  `json:"origin"`
	Content string  `json:"content"`
}

type searchResult struct {
	Intent string       `json:"intent"`
	Term   string       `json:"term,omitempty"`
	Items  []searchItem `json:"items"`
}

func (s *Server) handleSearchSite(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || strings.TrimSpace(query) == "" {
		return mcpgo.NewToolResultError("query is required"), nil
	}

	tag := intent.Classify(query)
	if raw := req.GetString("intent", ""); raw != "" {
		tag = intent.Tag(raw)
		if !tag.IsValid() {
			return mcpgo.NewToolResultError(fmt.Sprintf("unknown intent %q", raw)), nil
		}
	}

	res, err := s.retriever.Retrieve(s.withLogger(ctx, ToolSearchSite), query, tag)
	if err != nil {
		return s.toolError(err)
	}

	out := searchResult{Intent: string(tag), Term: res.Term, Items: make([]searchItem, 0, len(res.Items))}
	for _, it := range res.Items {
		out.Items = append(out.Items, searchItem{
			URL:     it.URL(),
			Score:   it.Score(),
			Origin:  string(it.Origin()),
			Content: it.Content(),
		})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode search result: %w", err)
	}
	return mcpgo.NewToolResultText(string(data)), nil
}

func (s *Server) handleRecommendSize(_ context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	ans, err := s.assistant.RecommendSize(
		req.GetFloat("bust", 0),
		req.GetFloat("waist", 0),
		req.GetFloat("hip", 0),
	)
	if err != nil {
		return s.toolError(err)
	}
	return mcpgo.NewToolResultText(ans.Text), nil
}

func (s *Server) handleAsk(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	message, err := req.RequireString("message")
	if err != nil {
		return mcpgo.NewToolResultError("message is required"), nil
	}

	reply, err := s.assistant.Reply(s.withLogger(ctx, ToolAsk), message)
	if err != nil {
		return s.toolError(err)
	}

	var b strings.Builder
	b.WriteString(reply.Text)
	if len(reply.Sources) > 0 {
		b.WriteString("\n\nSources:")
		for _, src := range reply.Sources {
			b.WriteString("\n- ")
			b.WriteString(src.URL)
		}
	}
	return mcpgo.NewToolResultText(b.String()), nil
}

// toolError reports caller mistakes as tool results and everything else as protocol errors.
func (s *Server) toolError(err error) (*mcpgo.CallToolResult, error) {
	for _, sentinel := range []error{domain.ErrValidation, domain.ErrNoMeasurements, domain.ErrParse} {
		if errors.Is(err, sentinel) {
			return mcpgo.NewToolResultError(sentinel.Error()), nil
		}
	}
	s.logger.Error("Tool call failed", zap.Error(err))
	return nil, err
}

func (s *Server) withLogger(ctx context.Context, tool string) context.Context {
	return logger.ContextWithLogger(ctx, s.logger.With(zap.String("tool", tool)))
}
