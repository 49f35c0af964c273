package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

func newTestServer(t *testing.T, chat *mockChatService, ingest *mockIngestService) *Server {
	t.Helper()
	ports := &Ports{Chat: chat}
	if ingest != nil {
		ports.Ingest = ingest
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleChat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer", func(t *testing.T) {
		chat := &mockChatService{answer: &domain.Answer{Text: "Paris.", UsedDocs: 3}}
		server := newTestServer(t, chat, nil)

		_, out, err := server.handleChat(ctx, nil, ChatInput{Question: "Capital of France?"})

		require.NoError(t, err)
		assert.Equal(t, "Paris.", out.Answer)
		assert.Equal(t, 3, out.UsedDocs)
		assert.Equal(t, "Capital of France?", chat.question)
	})

	t.Run("propagates error", func(t *testing.T) {
		chat := &mockChatService{err: domain.ErrBackendUnavailable}
		server := newTestServer(t, chat, nil)

		_, _, err := server.handleChat(ctx, nil, ChatInput{Question: "q"})

		assert.ErrorIs(t, err, domain.ErrBackendUnavailable)
	})
}

func TestServer_handleIngestOne(t *testing.T) {
	ctx := context.Background()

	t.Run("applies default bounds", func(t *testing.T) {
		ingest := &mockIngestService{report: &domain.IngestReport{
			Inserted: 4,
			Files:    []domain.FileStatus{{Name: "a.pdf", State: domain.FileIngested, Chunks: 4}},
		}}
		server := newTestServer(t, &mockChatService{}, ingest)

		_, out, err := server.handleIngestOne(ctx, nil, IngestOneInput{Filename: "a.pdf"})

		require.NoError(t, err)
		assert.Equal(t, "a.pdf", ingest.gotFile)
		assert.Equal(t, domain.IngestOptions{MaxPages: 10, MaxChunks: 100}, ingest.gotOpts)
		assert.Equal(t, 4, out.Inserted)
		assert.Equal(t, []string{"a.pdf"}, out.Files)
	})

	t.Run("explicit bounds", func(t *testing.T) {
		ingest := &mockIngestService{report: &domain.IngestReport{}}
		server := newTestServer(t, &mockChatService{}, ingest)

		_, _, err := server.handleIngestOne(ctx, nil, IngestOneInput{Filename: "b.txt", MaxPages: 2, MaxChunks: 5})

		require.NoError(t, err)
		assert.Equal(t, domain.IngestOptions{MaxPages: 2, MaxChunks: 5}, ingest.gotOpts)
	})

	t.Run("not found", func(t *testing.T) {
		ingest := &mockIngestService{err: domain.ErrNotFound}
		server := newTestServer(t, &mockChatService{}, ingest)

		_, _, err := server.handleIngestOne(ctx, nil, IngestOneInput{Filename: "missing.pdf"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleIngestPath(t *testing.T) {
	ctx := context.Background()

	t.Run("reports annotated files", func(t *testing.T) {
		ingest := &mockIngestService{report: &domain.IngestReport{
			Inserted: 2,
			Files: []domain.FileStatus{
				{Name: "a.txt", State: domain.FileIngested, Chunks: 2},
				{Name: "b.pdf", State: domain.FileFailed, Error: "boom"},
			},
		}}
		server := newTestServer(t, &mockChatService{}, ingest)

		_, out, err := server.handleIngestPath(ctx, nil, IngestPathInput{})

		require.NoError(t, err)
		assert.Equal(t, 1, ingest.dirCalls)
		assert.Equal(t, 2, out.Inserted)
		assert.Equal(t, []string{"a.txt", "b.pdf (ERROR: boom)"}, out.Files)
	})

	t.Run("flush failure", func(t *testing.T) {
		ingest := &mockIngestService{err: errors.New("flush failed")}
		server := newTestServer(t, &mockChatService{}, ingest)

		_, _, err := server.handleIngestPath(ctx, nil, IngestPathInput{})

		assert.Error(t, err)
	})
}

func TestToIngestOutput_Nil(t *testing.T) {
	out := toIngestOutput(nil)

	assert.Zero(t, out.Inserted)
	assert.NotNil(t, out.Files)
}
