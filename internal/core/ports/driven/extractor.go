package driven

import "context"

// PageExtractor recovers plain text from a PDF file.
// Several strategies exist (pure Go parsing, poppler's pdftotext); the text
// extractor service tries them in order and keeps the first useful result.
type PageExtractor interface {
	// Name identifies the strategy in logs and extraction results.
	Name() string

	// ExtractPages returns the text of the first maxPages pages of the file at path.
	// A maxPages of zero or less means every page.
	ExtractPages(ctx context.Context, path string, maxPages int) (string, error)
}

// FileReader reads plain text documents (.txt, .md).
type FileReader interface {
	// ReadText returns the file content as text. Invalid UTF-8 is dropped.
	ReadText(ctx context.Context, path string) (string, error)
}
