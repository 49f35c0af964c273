package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ragd resources.
	uriScheme = "ragd://"

	// defaultHistoryLimit is the number of runs listed by the static history resource.
	defaultHistoryLimit = 20
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recent ingestion runs, newest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{limit}",
		Name:        "history-limited",
		Description: "The given number of recent ingestion runs",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// runInfo is the JSON shape of one ingestion run.
type runInfo struct {
	ID         int64     `json:"id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Inserted   int       `json:"inserted"`
	Failed     int       `json:"failed"`
	Files      []string  `json:"files"`
}

// handleHistoryResource returns recent runs from the ingestion ledger.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	limit, ok := extractHistoryLimit(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runs, err := s.ports.Ingest.History(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing ingestion history: %w", err)
	}

	infos := make([]runInfo, len(runs))
	for i := range runs {
		infos[i] = toRunInfo(&runs[i])
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling history: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func toRunInfo(r *domain.IngestRun) runInfo {
	return runInfo{
		ID:         r.ID,
		Mode:       string(r.Mode),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Inserted:   r.Report.Inserted,
		Failed:     r.Report.Failed(),
		Files:      r.Report.FileNames(),
	}
}

// extractHistoryLimit parses ragd://history or ragd://history/{limit}.
func extractHistoryLimit(uri string) (int, bool) {
	const base = uriScheme + "history"

	if uri == base {
		return defaultHistoryLimit, true
	}
	if !strings.HasPrefix(uri, base+"/") {
		return 0, false
	}

	n, err := strconv.Atoi(strings.TrimPrefix(uri, base+"/"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
