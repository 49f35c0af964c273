// Package cli provides the ragd command line interface built on cobra.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragd/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragd/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driving"
	"github.com/custodia-labs/ragd/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Global flags.
var (
	cfgFile      string
	envFile      string
	verbose      bool
	logLevel     string
	storeBackend string
	docsDir      string
)

// Services used by commands. Commands build them on first use unless they
// were injected with SetServices.
var (
	ingestService   driving.IngestService
	chatService     driving.ChatService
	currentSettings *domain.Settings
	healthProbes    []ai.Probe
	closeServices   = func() {}
)

var rootCmd = &cobra.Command{
	Use:   "ragd",
	Short: "Answer questions from your own documents",
	Long: `ragd ingests PDF, text and Markdown documents into a vector store and
answers questions using only the passages it retrieves from them.

Configuration is read from ragd.toml (or --config), then .env, then the
environment (MILVUS_HOST, MILVUS_PORT, OLLAMA_URL, EMBED_MODEL,
GENERATION_MODEL, TOP_K, DOCS_DIR, RAGD_LEDGER_DIR, RAGD_ADDR).`,
	SilenceUsage:      true,
	PersistentPreRunE: configureLogging,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./ragd.toml)")
	pf.StringVar(&envFile, "env-file", "", "environment file (default ./.env)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&storeBackend, "store", "", "vector store backend: milvus or memory")
	pf.StringVar(&docsDir, "docs-dir", "", "documents directory (overrides DOCS_DIR)")
}

// SetVersion sets the version string reported by `ragd version`.
func SetVersion(v string) {
	if v != "" {
		version = v
		mcp.Version = v
	}
}

// SetServices injects prebuilt services, bypassing settings-driven wiring.
func SetServices(ingest driving.IngestService, chat driving.ChatService, settings domain.Settings) {
	ingestService = ingest
	chatService = chat
	currentSettings = &settings
}

// Execute runs the root command until it finishes or the process is interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { closeServices() }()

	return rootCmd.ExecuteContext(ctx)
}

func configureLogging(_ *cobra.Command, _ []string) error {
	if logLevel != "" {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	}
	logger.SetVerbose(verbose)
	return nil
}

// settings resolves the configuration once per process.
func settings() (domain.Settings, error) {
	if currentSettings != nil {
		return *currentSettings, nil
	}
	s, err := loadSettings()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	currentSettings = &s
	return s, nil
}

// ensureServices builds the ingest and chat services if they were not injected.
func ensureServices(cmd *cobra.Command) error {
	if ingestService != nil && chatService != nil {
		return nil
	}
	s, err := settings()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), s)
	if err != nil {
		return err
	}
	ingestService = a.ingest
	chatService = a.chat
	closeServices = a.Close
	return nil
}
