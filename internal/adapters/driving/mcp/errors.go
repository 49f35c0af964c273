// Package mcp provides an MCP (Model Context Protocol) server adapter for ragd.
// It lets AI assistants ask questions of the ingested documents and trigger ingestion.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
