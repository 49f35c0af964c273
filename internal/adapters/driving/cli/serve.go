package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragd/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/ragd/internal/core/domain"
)

var (
	serveAddr string
	serveMCP  bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API serving /health, /ingest_path, /ingest_files,
/ingest_one, /chat, /history and /metrics.

The listen address defaults to RAGD_ADDR or server.addr (":8000").
With --mcp the MCP server is also mounted at /mcp.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from settings)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "mount the MCP server at /mcp")
	rootCmd.AddCommand(serveCmd)
}

func newAPIServer(s domain.Settings) (*httpapi.Server, error) {
	cfg := httpapi.Config{
		Defaults: domain.IngestOptions{MaxPages: s.Ingest.MaxPages, MaxChunks: s.Ingest.MaxChunks},
	}
	if serveMCP {
		m, err := newMCPServer()
		if err != nil {
			return nil, err
		}
		cfg.MCP = m.Handler()
	}
	return httpapi.NewServer(ingestService, chatService, cfg)
}

func runServe(cmd *cobra.Command, _ []string) error {
	s, err := settings()
	if err != nil {
		return err
	}
	if err := ensureServices(cmd); err != nil {
		return err
	}

	server, err := newAPIServer(s)
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = s.ServerAddr
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "ragd listening on %s\n", addr)
	return server.Run(cmd.Context(), addr)
}
