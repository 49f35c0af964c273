// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The pipeline is split into five services:
//
//   - TextExtractor: multi-strategy text extraction with fallback
//   - EmbeddingClient: one embedding call per text, retried with linear backoff
//   - VectorStoreManager: collection and index lifecycle, insert, flush, search
//   - IngestService: extract, chunk, embed and insert with per-file isolation
//   - ChatService: retrieve, assemble the grounded prompt, generate
//
// Services are pure Go with no CGO or external dependencies.
package services
