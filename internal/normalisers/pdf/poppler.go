package pdf

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"

	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// ErrPDFToolNotFound indicates pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found: install poppler-utils")

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands from PATH.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrPDFToolNotFound
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// CheckAvailable returns ErrPDFToolNotFound if pdftotext is not on PATH.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return `PDF fallback extraction requires pdftotext (from poppler).

Install with:
  macOS:  brew install poppler
  Ubuntu: apt install poppler-utils
  Fedora: dnf install poppler-utils`
}

// Ensure Poppler implements the interface.
var _ driven.PageExtractor = (*Poppler)(nil)

// Poppler extracts text by running pdftotext.
type Poppler struct {
	runner CommandRunner
}

// NewPoppler creates an extractor that runs pdftotext from PATH.
func NewPoppler() *Poppler {
	return &Poppler{runner: execRunner{}}
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Poppler {
	return &Poppler{runner: runner}
}

// Name returns the strategy name.
func (p *Poppler) Name() string {
	return "pdftotext"
}

// ExtractPages runs pdftotext on the file, stopping after maxPages pages when maxPages > 0.
func (p *Poppler) ExtractPages(ctx context.Context, path string, maxPages int) (string, error) {
	args := []string{"-enc", "UTF-8"}
	if maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(maxPages))
	}
	args = append(args, path, "-")

	out, err := p.runner.Run(ctx, "pdftotext", args...)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("pdftotext: %w: %s", err, exitErr.Stderr)
		}
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
