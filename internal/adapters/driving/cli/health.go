package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragd/internal/adapters/driven/ai"
	"github.com/custodia-labs/ragd/internal/core/domain"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the model backends and the vector store are reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	list := healthProbes
	if list == nil {
		s, err := settings()
		if err != nil {
			return err
		}
		var closeProbes func()
		list, closeProbes, err = probes(cmd.Context(), s)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, err)
		}
		defer closeProbes()
	}

	results := ai.NewHealthChecker(0).Check(cmd.Context(), list...)
	w := cmd.OutOrStdout()
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = "FAIL: " + r.Err.Error()
		}
		fmt.Fprintf(w, "%-12s %-24s %s\n", r.Name, r.Model, status)
	}

	if !ai.Healthy(results) {
		return fmt.Errorf("%w: health check failed", domain.ErrBackendUnavailable)
	}
	return nil
}
