package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent ingestion runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of runs")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output runs as JSON")
	rootCmd.AddCommand(historyCmd)
}

// runJSON is the JSON shape of one ingestion run.
type runJSON struct {
	ID         int64     `json:"id"`
	Mode       string    `json:"mode"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Inserted   int       `json:"inserted"`
	Files      []string  `json:"files"`
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if historyLimit <= 0 {
		return fmt.Errorf("%w: --limit must be positive", domain.ErrInvalidInput)
	}
	if err := ensureServices(cmd); err != nil {
		return err
	}

	runs, err := ingestService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if historyJSON {
		out := make([]runJSON, len(runs))
		for i := range runs {
			r := &runs[i]
			out[i] = runJSON{
				ID:         r.ID,
				Mode:       string(r.Mode),
				StartedAt:  r.StartedAt,
				FinishedAt: r.FinishedAt,
				Inserted:   r.Report.Inserted,
				Files:      r.Report.FileNames(),
			}
		}
		return writeJSON(w, out)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No ingestion runs recorded.")
		return nil
	}
	for i := range runs {
		r := &runs[i]
		fmt.Fprintf(w, "#%d %s %s  %d chunks, %d files, %d failed (%s)\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime), r.Mode,
			r.Report.Inserted, len(r.Report.Files), r.Report.Failed(),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	}
	return nil
}
