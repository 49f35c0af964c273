package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driving"
)

// ErrMissingService is returned when a required service is not provided.
var ErrMissingService = errors.New("httpapi: ingest and chat services are required")

// Config configures the HTTP API.
type Config struct {
	// Defaults applies to /ingest_one when max_pages or max_chunks are absent.
	Defaults domain.IngestOptions

	// MaxUploadBytes bounds multipart uploads held in memory. Defaults to 32 MiB.
	MaxUploadBytes int64

	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server serves the HTTP API.
type Server struct {
	ingest driving.IngestService
	chat   driving.ChatService
	cfg    Config
	engine *gin.Engine
}

// NewServer creates the API server and its routes.
func NewServer(ingest driving.IngestService, chat driving.ChatService, cfg Config) (*Server, error) {
	if ingest == nil || chat == nil {
		return nil, ErrMissingService
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 32 << 20
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.MaxMultipartMemory = cfg.MaxUploadBytes
	engine.Use(gin.Recovery(), metricsMiddleware(), loggingMiddleware())

	s := &Server{ingest: ingest, chat: chat, cfg: cfg, engine: engine}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.engine
	r.GET("/health", s.handleHealth)
	r.POST("/ingest_path", s.handleIngestPath)
	r.POST("/ingest_files", s.handleIngestFiles)
	r.POST("/ingest_one", s.handleIngestOne)
	r.POST("/chat", s.handleChat)
	r.GET("/history", s.handleHistory)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if s.cfg.MCP != nil {
		r.Any("/mcp", gin.WrapH(s.cfg.MCP))
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown when context is cancelled
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}
