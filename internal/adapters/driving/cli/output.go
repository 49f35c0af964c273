package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// reportJSON is the JSON shape of an ingestion report.
type reportJSON struct {
	Inserted int      `json:"inserted"`
	Files    []string `json:"files"`
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func writeReport(w io.Writer, r *domain.IngestReport, asJSON bool) error {
	if r == nil {
		r = &domain.IngestReport{}
	}
	if asJSON {
		return writeJSON(w, reportJSON{Inserted: r.Inserted, Files: r.FileNames()})
	}

	fmt.Fprintf(w, "Inserted %d chunks from %d files", r.Inserted, len(r.Files))
	if failed := r.Failed(); failed > 0 {
		fmt.Fprintf(w, " (%d failed)", failed)
	}
	fmt.Fprintln(w)
	for _, name := range r.FileNames() {
		fmt.Fprintf(w, "  %s\n", name)
	}
	return nil
}
