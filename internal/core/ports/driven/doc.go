// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - PageExtractor: Recovers text from PDF files, bounded to N pages
//   - FileReader: Reads plain text and markdown files
//   - Chunker: Splits extracted text into overlapping chunks
//   - EmbeddingBackend: Turns one text into a fixed-dimension vector
//   - GenerationBackend: Answers a list of chat turns
//   - VectorStore: Collection lifecycle, insert, flush and similarity search
//   - Sleeper: Waits out retry backoff delays
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - IngestLedger: Records completed ingestion runs. Without it, history is unavailable.
//   - PromptStore: User-editable prompt templates. Without it, the built-in prompt is used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, normaliser, or postprocessor package
package driven
