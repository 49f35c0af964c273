package mcp

import (
	"context"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer   *domain.Answer
	err      error
	question string
}

func (m *mockChatService) Answer(_ context.Context, question string) (*domain.Answer, error) {
	m.question = question
	return m.answer, m.err
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report *domain.IngestReport
	runs   []domain.IngestRun
	err    error

	gotFile  string
	gotOpts  domain.IngestOptions
	gotLimit int
	dirCalls int
}

func (m *mockIngestService) IngestDir(_ context.Context) (*domain.IngestReport, error) {
	m.dirCalls++
	return m.report, m.err
}

func (m *mockIngestService) IngestFiles(_ context.Context, _ []domain.Upload) (*domain.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) IngestPaths(
	_ context.Context,
	_ domain.IngestMode,
	_ []string,
) (*domain.IngestReport, error) {
	return m.report, m.err
}

func (m *mockIngestService) IngestOne(
	_ context.Context,
	filename string,
	opts domain.IngestOptions,
) (*domain.IngestReport, error) {
	m.gotFile = filename
	m.gotOpts = opts
	return m.report, m.err
}

func (m *mockIngestService) History(_ context.Context, limit int) ([]domain.IngestRun, error) {
	m.gotLimit = limit
	return m.runs, m.err
}
