package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// Defaults of the ingest_one tool.
const (
	defaultMaxPages  = 10
	defaultMaxChunks = 100
)

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested documents"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	Answer   string `json:"answer"`
	UsedDocs int    `json:"used_docs"`
}

// IngestOneInput is the input schema for the ingest_one tool.
type IngestOneInput struct {
	Filename  string `json:"filename" jsonschema:"name of a file in the documents directory"`
	MaxPages  int    `json:"max_pages,omitempty" jsonschema:"PDF pages to extract (default 10)"`
	MaxChunks int    `json:"max_chunks,omitempty" jsonschema:"maximum chunks to insert (default 100)"`
}

// IngestPathInput is the input schema for the ingest_path tool. It takes no arguments.
type IngestPathInput struct{}

// IngestOutput is the output schema of the ingestion tools.
type IngestOutput struct {
	Inserted int      `json:"inserted"`
	Files    []string `json:"files"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Answer a question using only the ingested documents",
	}, s.handleChat)

	if s.ports.Ingest == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_one",
		Description: "Ingest a single file of the documents directory with page and chunk bounds",
	}, s.handleIngestOne)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_path",
		Description: "Ingest every supported file of the documents directory",
	}, s.handleIngestPath)
}

// handleChat handles the chat tool invocation.
func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	answer, err := s.ports.Chat.Answer(ctx, input.Question)
	if err != nil {
		return nil, ChatOutput{}, err
	}
	return nil, ChatOutput{Answer: answer.Text, UsedDocs: answer.UsedDocs}, nil
}

// handleIngestOne handles the ingest_one tool invocation.
func (s *Server) handleIngestOne(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestOneInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	opts := domain.IngestOptions{MaxPages: input.MaxPages, MaxChunks: input.MaxChunks}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	if opts.MaxChunks <= 0 {
		opts.MaxChunks = defaultMaxChunks
	}

	report, err := s.ports.Ingest.IngestOne(ctx, input.Filename, opts)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, toIngestOutput(report), nil
}

// handleIngestPath handles the ingest_path tool invocation.
func (s *Server) handleIngestPath(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ IngestPathInput,
) (*mcp.CallToolResult, IngestOutput, error) {
	report, err := s.ports.Ingest.IngestDir(ctx)
	if err != nil {
		return nil, IngestOutput{}, err
	}
	return nil, toIngestOutput(report), nil
}

func toIngestOutput(r *domain.IngestReport) IngestOutput {
	if r == nil {
		return IngestOutput{Files: []string{}}
	}
	return IngestOutput{Inserted: r.Inserted, Files: r.FileNames()}
}
