package driven

// Chunker splits extracted text into ordered chunks suitable for embedding.
type Chunker interface {
	// Split returns the chunks of text, at most maxChunks of them when maxChunks > 0.
	// Identical input yields identical output.
	Split(text string, maxChunks int) []string
}
