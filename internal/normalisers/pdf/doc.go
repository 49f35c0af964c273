// Package pdf provides page-bounded PDF text extraction.
//
// Two strategies are available. Native parses the file in process with
// github.com/ledongthuc/pdf and needs nothing installed. Poppler shells out to
// pdftotext, which copes better with unusual encodings and damaged files.
// The text extractor service runs Native first and falls back to Poppler.
package pdf
