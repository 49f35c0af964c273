package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/logger"
)

// MinExtractedChars is the trimmed length below which a PDF strategy's output is
// considered unusable and the next strategy is tried.
const MinExtractedChars = 20

// StrategyPlainText names extractions read directly from .txt and .md files.
const StrategyPlainText = "plaintext"

// TextExtractor dispatches files to the right reader by extension.
// PDFs go through an ordered list of page extractors: a later strategy only
// runs when the best result so far is shorter than MinExtractedChars, and
// replaces it only when its own trimmed text is strictly longer.
type TextExtractor struct {
	reader     driven.FileReader
	strategies []driven.PageExtractor
}

// NewTextExtractor creates an extractor. strategies are tried in order for PDFs.
func NewTextExtractor(reader driven.FileReader, strategies ...driven.PageExtractor) *TextExtractor {
	return &TextExtractor{reader: reader, strategies: strategies}
}

// Extract returns the text of the file at path. maxPages bounds PDF extraction
// (zero or less means every page) and is ignored for other types.
//
// An extraction with no usable text is a normal outcome, not an error: PDF
// strategy failures are logged and swallowed.
func (e *TextExtractor) Extract(ctx context.Context, path string, maxPages int) (domain.Extraction, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !domain.IsSupportedExtension(ext) {
		return domain.Extraction{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedType, ext)
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Extraction{}, fmt.Errorf("%w: %s", domain.ErrNotFound, filepath.Base(path))
		}
		return domain.Extraction{}, fmt.Errorf("stat %s: %w", path, err)
	}

	if ext == domain.ExtPDF {
		return e.extractPDF(ctx, path, maxPages), nil
	}

	text, err := e.reader.ReadText(ctx, path)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return domain.Extraction{Text: text, Strategy: StrategyPlainText}, nil
}

func (e *TextExtractor) extractPDF(ctx context.Context, path string, maxPages int) domain.Extraction {
	var best domain.Extraction
	for _, s := range e.strategies {
		text, err := s.ExtractPages(ctx, path, maxPages)
		if err != nil {
			logger.Debug("pdf strategy %s failed on %s: %v", s.Name(), filepath.Base(path), err)
			continue
		}

		candidate := domain.Extraction{Text: text, Strategy: s.Name()}
		if best.Strategy == "" || candidate.TrimmedLen() > best.TrimmedLen() {
			best = candidate
		}
		logger.Debug("pdf strategy %s extracted %d chars from %s", s.Name(), candidate.TrimmedLen(), filepath.Base(path))

		if best.TrimmedLen() >= MinExtractedChars {
			break
		}
	}

	if best.Empty() {
		logger.Debug("no text recovered from %s", filepath.Base(path))
	}
	return best
}
