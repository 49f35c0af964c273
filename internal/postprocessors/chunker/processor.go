// Package chunker packs extracted text into overlapping paragraph chunks.
package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.Chunker = (*Processor)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1200

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Processor splits text into chunks by greedily packing paragraphs.
// A paragraph is one non-blank line. Sizes are counted in characters (runes),
// and a paragraph longer than the chunk size is emitted whole.
type Processor struct {
	chunkSize int
	overlap   int
	maxChunks int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
// An overlap not smaller than the chunk size is replaced by a quarter of the
// chunk size when New applies the options.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithMaxChunks sets the default ceiling used when Split is called with maxChunks <= 0.
// Zero means unbounded.
func WithMaxChunks(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxChunks = n
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Overlap must stay below the chunk size.
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Split packs the paragraphs of text into chunks, stopping once maxChunks
// chunks exist. maxChunks <= 0 falls back to the configured ceiling.
//
// A paragraph joins the current chunk while the chunk, a newline and the
// paragraph fit in the chunk size. Otherwise the chunk is emitted and the next
// one starts with the last overlap characters of it.
func (p *Processor) Split(text string, maxChunks int) []string {
	if maxChunks <= 0 {
		maxChunks = p.maxChunks
	}
	full := func(chunks []string) bool {
		return maxChunks > 0 && len(chunks) >= maxChunks
	}

	var chunks []string
	buf := ""
	for _, line := range strings.Split(text, "\n") {
		para := strings.TrimSpace(line)
		if para == "" {
			continue
		}

		bufLen := utf8.RuneCountInString(buf)
		if bufLen+utf8.RuneCountInString(para)+1 <= p.chunkSize {
			buf = strings.TrimSpace(buf + "\n" + para)
			continue
		}

		if buf != "" {
			chunks = append(chunks, buf)
			if full(chunks) {
				return chunks
			}
		}
		buf = strings.TrimSpace(p.tail(buf, bufLen) + "\n" + para)
	}

	if buf != "" && !full(chunks) {
		chunks = append(chunks, buf)
	}
	return chunks
}

// tail returns the last overlap characters of buf, or "" when buf is not
// longer than the overlap.
func (p *Processor) tail(buf string, bufLen int) string {
	if p.overlap <= 0 || bufLen <= p.overlap {
		return ""
	}
	r := []rune(buf)
	return string(r[len(r)-p.overlap:])
}
