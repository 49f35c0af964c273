// Package domain defines the core business entities for ragd.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Extraction: The text recovered from one document
//   - VectorRecord: A chunk with its embedding, ready for the vector store
//   - CollectionSchema: The vector collection layout
//   - IngestReport: The outcome of an ingestion run
//   - Retry: The backoff state machine shared by the backend clients
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
