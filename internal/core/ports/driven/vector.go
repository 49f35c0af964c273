package driven

import (
	"context"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// VectorStore is the capability contract of the vector database.
// The database owns storage, indexing and search; the core only manages the
// collection lifecycle and moves rows in and out.
//
// Collection and index creation are compare-and-create: two processes may both
// observe a missing collection and both try to create it. Implementations
// return domain.ErrAlreadyExists from the losing create so callers can proceed.
//
// A single VectorStore is shared by every request. Implementations must be
// safe for concurrent use.
type VectorStore interface {
	// HasCollection reports whether the named collection exists.
	HasCollection(ctx context.Context, name string) (bool, error)

	// CreateCollection creates a collection with the given schema.
	// Returns domain.ErrAlreadyExists if it already exists.
	CreateCollection(ctx context.Context, schema domain.CollectionSchema) error

	// DescribeCollection returns the schema of an existing collection.
	// Returns domain.ErrNotFound if the collection does not exist.
	DescribeCollection(ctx context.Context, name string) (domain.CollectionSchema, error)

	// ListIndexes describes the indexes built on the collection.
	ListIndexes(ctx context.Context, collection string) ([]domain.IndexDescriptor, error)

	// CreateIndex builds an index. Returns domain.ErrAlreadyExists if the field is already indexed.
	CreateIndex(ctx context.Context, collection string, spec domain.IndexSpec) error

	// LoadCollection makes the collection queryable.
	LoadCollection(ctx context.Context, collection string) error

	// Insert appends rows to the collection.
	Insert(ctx context.Context, collection string, records []domain.VectorRecord) error

	// Flush makes inserted rows visible to subsequent searches.
	Flush(ctx context.Context, collection string) error

	// Search returns at most req.TopK hits ranked by descending similarity.
	Search(ctx context.Context, collection string, req domain.SearchRequest) ([]domain.SearchHit, error)

	// Close releases resources.
	Close() error
}
