package domain

import (
	"fmt"
	"time"
)

// FileState is the outcome of ingesting one file.
type FileState string

// File states.
const (
	FileIngested FileState = "ok"
	FileNoText   FileState = "no_text"
	FileFailed   FileState = "error"
)

// FileStatus records what happened to one file during an ingestion run.
type FileStatus struct {
	// Name is the file's base name.
	Name string

	// State is the outcome.
	State FileState

	// Chunks is the number of records inserted for the file.
	Chunks int

	// Error is the failure detail when State is FileFailed.
	Error string
}

// String renders the status the way ingestion reports list it:
// "name", "name (no text)" or "name (ERROR: detail)".
func (s FileStatus) String() string {
	switch s.State {
	case FileNoText:
		return s.Name + " (no text)"
	case FileFailed:
		return fmt.Sprintf("%s (ERROR: %s)", s.Name, s.Error)
	default:
		return s.Name
	}
}

// IngestReport summarises one ingestion operation.
type IngestReport struct {
	// Inserted is the total number of records inserted.
	Inserted int

	// Files lists every file considered, in processing order.
	Files []FileStatus
}

// FileNames returns the annotated status strings of all files.
func (r *IngestReport) FileNames() []string {
	names := make([]string, len(r.Files))
	for i := range r.Files {
		names[i] = r.Files[i].String()
	}
	return names
}

// Failed returns the number of files that ended in error.
func (r *IngestReport) Failed() int {
	n := 0
	for i := range r.Files {
		if r.Files[i].State == FileFailed {
			n++
		}
	}
	return n
}

// IngestOptions bounds a single-file ingestion.
type IngestOptions struct {
	// MaxPages limits PDF extraction to the first N pages. Zero means all pages.
	MaxPages int

	// MaxChunks caps the number of chunks inserted. Zero means no cap.
	MaxChunks int
}

// IngestMode identifies the entrypoint that produced an ingestion run.
type IngestMode string

// Ingestion modes recorded in the ledger.
const (
	IngestModeDir    IngestMode = "dir"
	IngestModeUpload IngestMode = "upload"
	IngestModeOne    IngestMode = "one"
	IngestModeWatch  IngestMode = "watch"
)

// IngestRun is a completed ingestion run as stored in the ledger.
type IngestRun struct {
	ID         int64
	Mode       IngestMode
	StartedAt  time.Time
	FinishedAt time.Time
	Report     IngestReport
}
