package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a referenced file or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Vector stores return it from create operations that lost a creation race.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a document extension no extractor handles.
	ErrUnsupportedType = errors.New("unsupported type")

	// Backend Errors.

	// ErrTransient marks a backend failure worth retrying: the request did not
	// complete (network failure, timeout) or the backend reported overload.
	// Transports wrap it; retry policies test for it with errors.Is.
	ErrTransient = errors.New("transient backend failure")

	// ErrBackendUnavailable indicates an embedding or generation backend
	// exhausted its retry budget.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrEmptyGeneration indicates the generation backend answered without content.
	ErrEmptyGeneration = errors.New("generation returned no content")

	// Vector Store Errors.

	// ErrStoreFault wraps any vector store operation failure.
	ErrStoreFault = errors.New("vector store fault")

	// ErrDimensionMismatch indicates a vector whose length differs from the collection dimension.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
