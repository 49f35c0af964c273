package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// Ensure Native implements the interface.
var _ driven.PageExtractor = (*Native)(nil)

// Native extracts text with the pure Go ledongthuc/pdf parser.
type Native struct{}

// NewNative creates a native extractor.
func NewNative() *Native {
	return &Native{}
}

// Name returns the strategy name.
func (n *Native) Name() string {
	return "native"
}

// ExtractPages returns the plain text of the first maxPages pages, one page per
// block. maxPages <= 0 extracts every page.
func (n *Native) ExtractPages(ctx context.Context, path string, maxPages int) (text string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("parse %s: %v", path, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := r.NumPage()
	if maxPages > 0 && maxPages < pages {
		pages = maxPages
	}

	var b strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, err := p.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
