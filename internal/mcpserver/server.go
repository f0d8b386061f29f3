// Package mcpserver exposes question answering and corpus ingestion as MCP
// tools over stdio, so editor agents can query the corpus directly.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"lodestar/internal/chat"
	"lodestar/internal/ingest"
	"lodestar/internal/logging"
	"lodestar/internal/rag"
)

// Server wraps the MCP SDK server around the chat service and the
// ingestion pipeline.
type Server struct {
	MCPServer *sdkmcp.Server
	chat      *chat.Service
	ingest    *ingest.Pipeline
	log       *slog.Logger
}

// NewServer creates an MCP server with the ask, ingest_text, and
// get_history tools.
func NewServer(chatSvc *chat.Service, pipeline *ingest.Pipeline, version string) *Server {
	s := &Server{
		chat:   chatSvc,
		ingest: pipeline,
		log:    logging.New("mcp"),
	}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "lodestar", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the private corpus, falling back to web search when local evidence is insufficient. Reuses a session when session_id is given.",
	}, s.handleAsk)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "ingest_text",
		Description: "Add raw text to the corpus under a source label. Returns the number of stored chunks.",
	}, s.handleIngestText)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_history",
		Description: "Return the recent transcript of a session.",
	}, s.handleGetHistory)
}

// --- Tool input/output types ---

type askInput struct {
	Question  string `json:"question" jsonschema:"the question to answer"`
	SessionID string `json:"session_id,omitempty" jsonschema:"session to continue; omit to start a new one"`
}

type askOutput struct {
	SessionID   string   `json:"session_id"`
	Answer      string   `json:"answer"`
	Confidence  float64  `json:"confidence"`
	Suggestions []string `json:"suggestions,omitempty"`
	MissingInfo []string `json:"missing_info,omitempty"`
	Exhausted   bool     `json:"exhausted"`
}

type ingestTextInput struct {
	Source string `json:"source" jsonschema:"label attributing the text, e.g. a file name"`
	Text   string `json:"text" jsonschema:"the raw text to index"`
}

type ingestTextOutput struct {
	Chunks int `json:"chunks"`
}

type getHistoryInput struct {
	SessionID string `json:"session_id" jsonschema:"session ID from a previous ask call"`
}

type getHistoryOutput struct {
	Messages []rag.Message `json:"messages"`
}

// --- Tool handlers ---

func (s *Server) handleAsk(ctx context.Context, _ *sdkmcp.CallToolRequest, input askInput) (*sdkmcp.CallToolResult, askOutput, error) {
	if input.Question == "" {
		return nil, askOutput{}, fmt.Errorf("question is required")
	}
	sessionID := input.SessionID
	if sessionID == "" {
		sessionID = chat.NewSessionID()
	}

	res, err := s.chat.Ask(ctx, sessionID, input.Question)
	if err != nil {
		return nil, askOutput{}, fmt.Errorf("ask: %w", err)
	}

	return nil, askOutput{
		SessionID:   sessionID,
		Answer:      res.Answer,
		Confidence:  res.Confidence,
		Suggestions: res.Suggestions,
		MissingInfo: res.MissingInfo,
		Exhausted:   res.Exhausted(),
	}, nil
}

func (s *Server) handleIngestText(ctx context.Context, _ *sdkmcp.CallToolRequest, input ingestTextInput) (*sdkmcp.CallToolResult, ingestTextOutput, error) {
	if input.Text == "" {
		return nil, ingestTextOutput{}, fmt.Errorf("text is required")
	}
	source := input.Source
	if source == "" {
		source = "mcp"
	}

	n, err := s.ingest.IngestText(ctx, source, input.Text)
	if err != nil {
		return nil, ingestTextOutput{}, fmt.Errorf("ingest_text: %w", err)
	}
	s.log.Info("ingested via mcp", "source", source, "chunks", n)
	return nil, ingestTextOutput{Chunks: n}, nil
}

func (s *Server) handleGetHistory(ctx context.Context, _ *sdkmcp.CallToolRequest, input getHistoryInput) (*sdkmcp.CallToolResult, getHistoryOutput, error) {
	if input.SessionID == "" {
		return nil, getHistoryOutput{}, fmt.Errorf("session_id is required")
	}
	messages, err := s.chat.Transcript(ctx, input.SessionID)
	if err != nil {
		return nil, getHistoryOutput{}, fmt.Errorf("get_history: %w", err)
	}
	return nil, getHistoryOutput{Messages: messages}, nil
}

// Run serves MCP over stdio until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}
