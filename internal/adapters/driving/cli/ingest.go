package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// fromSettings marks a bound flag left at its default.
const fromSettings = -1

var (
	ingestJSON bool

	ingestOneMaxPages  int
	ingestOneMaxChunks int
	ingestOneJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest documents into the vector store",
	Long: `Without arguments, ingests every supported file (.pdf, .txt, .md) of the
documents directory. With arguments, ingests the given files.

A file that fails is reported and the rest of the batch continues.
No page or chunk bound applies.`,
	RunE: runIngest,
}

var ingestOneCmd = &cobra.Command{
	Use:   "ingest-one [filename]",
	Short: "Ingest one file of the documents directory with bounds",
	Long: `Ingests a single file of the documents directory. PDF extraction is
limited to --max-pages pages and at most --max-chunks chunks are inserted.
Bounds default to ingest.max_pages and ingest.max_chunks (10 and 100).
A value of 0 removes the bound.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngestOne,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestCmd)

	ingestOneCmd.Flags().IntVar(&ingestOneMaxPages, "max-pages", fromSettings, "PDF pages to extract")
	ingestOneCmd.Flags().IntVar(&ingestOneMaxChunks, "max-chunks", fromSettings, "maximum chunks to insert")
	ingestOneCmd.Flags().BoolVar(&ingestOneJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(ingestOneCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := ensureServices(cmd); err != nil {
		return err
	}

	var (
		report *domain.IngestReport
		err    error
	)
	if len(args) > 0 {
		report, err = ingestService.IngestPaths(cmd.Context(), domain.IngestModeDir, args)
	} else {
		report, err = ingestService.IngestDir(cmd.Context())
	}
	if err != nil {
		// A flush failure still carries the per-file outcomes.
		if report != nil {
			_ = writeReport(cmd.OutOrStdout(), report, ingestJSON)
		}
		return fmt.Errorf("ingest failed: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), report, ingestJSON)
}

func runIngestOne(cmd *cobra.Command, args []string) error {
	s, err := settings()
	if err != nil {
		return err
	}
	if err := ensureServices(cmd); err != nil {
		return err
	}

	opts := domain.IngestOptions{MaxPages: s.Ingest.MaxPages, MaxChunks: s.Ingest.MaxChunks}
	if ingestOneMaxPages != fromSettings {
		opts.MaxPages = ingestOneMaxPages
	}
	if ingestOneMaxChunks != fromSettings {
		opts.MaxChunks = ingestOneMaxChunks
	}
	if opts.MaxPages < 0 || opts.MaxChunks < 0 {
		return fmt.Errorf("%w: bounds must be non-negative", domain.ErrInvalidInput)
	}

	report, err := ingestService.IngestOne(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	return writeReport(cmd.OutOrStdout(), report, ingestOneJSON)
}
