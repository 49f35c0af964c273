// Package plaintext reads .txt and .md documents.
package plaintext

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// Ensure Reader implements the interface.
var _ driven.FileReader = (*Reader)(nil)

// utf8BOM is stripped from the start of files saved by some editors.
const utf8BOM = "\ufeff"

// Reader reads UTF-8 text files. Invalid byte sequences are dropped.
type Reader struct{}

// New creates a new plain text reader.
func New() *Reader {
	return &Reader{}
}

// ReadText returns the content of the file at path.
func (r *Reader) ReadText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	text := strings.ToValidUTF8(string(b), "")
	return strings.TrimPrefix(text, utf8BOM), nil
}
