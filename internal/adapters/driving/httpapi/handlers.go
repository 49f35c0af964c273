package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// defaultHistoryLimit is used when /history has no limit.
const defaultHistoryLimit = 20

// ingestResponse is the body of every ingestion route.
type ingestResponse struct {
	Inserted int      `json:"inserted"`
	Files    []string `json:"files"`
}

func toIngestResponse(r *domain.IngestReport) ingestResponse {
	if r == nil {
		return ingestResponse{Files: []string{}}
	}
	return ingestResponse{Inserted: r.Inserted, Files: r.FileNames()}
}

// chatRequest is the body of /chat.
type chatRequest struct {
	Question string `json:"question"`
}

// runResponse is one entry of /history.
type runResponse struct {
	ID         int64     `json:"id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Inserted   int       `json:"inserted"`
	Files      []string  `json:"files"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleIngestPath(c *gin.Context) {
	report, err := s.ingest.IngestDir(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIngestResponse(report))
}

func (s *Server) handleIngestFiles(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		abortBadRequest(c, fmt.Sprintf("multipart form with field %q is required: %v", "files", err))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		abortBadRequest(c, `field "files" is required`)
		return
	}

	uploads := make([]domain.Upload, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			abortBadRequest(c, fmt.Sprintf("read upload %s: %v", h.Filename, err))
			return
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			abortBadRequest(c, fmt.Sprintf("read upload %s: %v", h.Filename, err))
			return
		}
		uploads = append(uploads, domain.Upload{Name: h.Filename, Content: content})
	}

	report, err := s.ingest.IngestFiles(c.Request.Context(), uploads)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIngestResponse(report))
}

func (s *Server) handleIngestOne(c *gin.Context) {
	filename := c.Query("filename")
	if filename == "" {
		abortBadRequest(c, "query parameter filename is required")
		return
	}

	opts := s.cfg.Defaults
	var err error
	if opts.MaxPages, err = intQuery(c, "max_pages", opts.MaxPages); err != nil {
		abortBadRequest(c, err.Error())
		return
	}
	if opts.MaxChunks, err = intQuery(c, "max_chunks", opts.MaxChunks); err != nil {
		abortBadRequest(c, err.Error())
		return
	}

	report, err := s.ingest.IngestOne(c.Request.Context(), filename, opts)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toIngestResponse(report))
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortBadRequest(c, fmt.Sprintf("invalid body: %v", err))
		return
	}

	answer, err := s.chat.Answer(c.Request.Context(), req.Question)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, answer)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, err := intQuery(c, "limit", defaultHistoryLimit)
	if err != nil || limit <= 0 {
		abortBadRequest(c, "limit must be a positive integer")
		return
	}

	runs, err := s.ingest.History(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		abortWithError(c, err)
		return
	}

	out := make([]runResponse, len(runs))
	for i := range runs {
		r := &runs[i]
		out[i] = runResponse{
			ID:         r.ID,
			Mode:       string(r.Mode),
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
			Inserted:   r.Report.Inserted,
			Files:      r.Report.FileNames(),
		}
	}
	c.JSON(http.StatusOK, out)
}

// intQuery parses a non-negative integer query parameter, returning def when absent.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || strings.TrimSpace(raw) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, raw)
	}
	return n, nil
}
