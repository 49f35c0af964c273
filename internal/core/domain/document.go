package domain

import (
	"path/filepath"
	"strings"
)

// Supported document extensions, lower-cased with the leading dot.
const (
	ExtPDF      = ".pdf"
	ExtText     = ".txt"
	ExtMarkdown = ".md"
)

// IsSupportedExtension reports whether files with this extension can be ingested.
// The comparison is case-insensitive.
func IsSupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ExtPDF, ExtText, ExtMarkdown:
		return true
	default:
		return false
	}
}

// IsSupportedFile reports whether the file at path has a supported extension.
func IsSupportedFile(path string) bool {
	return IsSupportedExtension(filepath.Ext(path))
}

// Extraction is the text recovered from one document.
// An empty extraction is a normal outcome, not an error: the document
// simply had no recoverable text.
type Extraction struct {
	// Text is the extracted plain text.
	Text string

	// Strategy names the extractor that produced Text (e.g. "plaintext", "pdf", "pdftotext").
	// Empty when no strategy produced text.
	Strategy string
}

// Empty reports whether the extraction carries no usable text.
func (e Extraction) Empty() bool {
	return strings.TrimSpace(e.Text) == ""
}

// TrimmedLen returns the length in characters of the text with surrounding whitespace removed.
func (e Extraction) TrimmedLen() int {
	return len([]rune(strings.TrimSpace(e.Text)))
}

// VectorRecord is one row of the vector collection.
type VectorRecord struct {
	// ID is the unique primary key, generated at insert time.
	ID string

	// Vector is the embedding of Text.
	Vector []float32

	// Text is the original chunk content, returned verbatim by searches.
	Text string
}

// SearchHit is a single similarity search result.
type SearchHit struct {
	// Text is the stored chunk content.
	Text string

	// Score is the inner product between the query and the stored vector.
	// Higher means more similar.
	Score float32
}

// Answer is the outcome of a grounded question.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"answer"`

	// UsedDocs is the number of retrieved passages supplied as context.
	UsedDocs int `json:"used_docs"`
}

// Upload is a file supplied by the caller rather than found on disk.
type Upload struct {
	// Name is the client-side file name. Only its base name is used.
	Name string

	// Content is the raw file content.
	Content []byte
}
