package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// defaultShards is the shard count of created collections.
const defaultShards = 1

// Config configures the Milvus connection.
type Config struct {
	// Address is host:port of the Milvus proxy.
	Address string

	// DialTimeout bounds the initial connection. Defaults to 30s.
	DialTimeout time.Duration
}

// Store implements driven.VectorStore on a Milvus server.
type Store struct {
	client client.Client
	addr   string
}

// New connects to Milvus.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: milvus address is required", domain.ErrInvalidInput)
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = 30 * time.Second
	}

	dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	logger.Debug("connecting to milvus at %s", cfg.Address)
	c, err := client.NewClient(dialCtx, client.Config{Address: cfg.Address})
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %v", domain.ErrStoreFault, cfg.Address, err)
	}
	return &Store{client: c, addr: cfg.Address}, nil
}

// Address returns the server address.
func (s *Store) Address() string {
	return s.addr
}

// HasCollection reports whether the named collection exists.
func (s *Store) HasCollection(ctx context.Context, name string) (bool, error) {
	ok, err := s.client.HasCollection(ctx, name)
	if err != nil {
		return false, fmt.Errorf("has collection %s: %w", name, err)
	}
	return ok, nil
}

// CreateCollection creates a collection with the given schema.
func (s *Store) CreateCollection(ctx context.Context, schema domain.CollectionSchema) error {
	es, err := toEntitySchema(schema)
	if err != nil {
		return err
	}
	var opts []client.CreateCollectionOption
	if schema.Consistency == domain.ConsistencyStrong {
		opts = append(opts, client.WithConsistencyLevel(entity.ClStrong))
	}
	if err := s.client.CreateCollection(ctx, es, defaultShards, opts...); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("%w: collection %s", domain.ErrAlreadyExists, schema.Name)
		}
		return fmt.Errorf("create collection %s: %w", schema.Name, err)
	}
	return nil
}

// DescribeCollection returns the schema of an existing collection.
func (s *Store) DescribeCollection(ctx context.Context, name string) (domain.CollectionSchema, error) {
	ok, err := s.HasCollection(ctx, name)
	if err != nil {
		return domain.CollectionSchema{}, err
	}
	if !ok {
		return domain.CollectionSchema{}, fmt.Errorf("%w: collection %s", domain.ErrNotFound, name)
	}
	c, err := s.client.DescribeCollection(ctx, name)
	if err != nil {
		return domain.CollectionSchema{}, fmt.Errorf("describe collection %s: %w", name, err)
	}
	return fromEntityCollection(c)
}

// ListIndexes describes the indexes built on the vector field.
func (s *Store) ListIndexes(ctx context.Context, collection string) ([]domain.IndexDescriptor, error) {
	indexes, err := s.client.DescribeIndex(ctx, collection, domain.FieldVector)
	if err != nil {
		if isIndexNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("describe index on %s: %w", collection, err)
	}
	out := make([]domain.IndexDescriptor, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, fromEntityIndex(domain.FieldVector, idx))
	}
	return out, nil
}

// CreateIndex builds an index and waits for it to finish.
func (s *Store) CreateIndex(ctx context.Context, collection string, spec domain.IndexSpec) error {
	idx, err := toEntityIndex(spec)
	if err != nil {
		return err
	}
	if err := s.client.CreateIndex(ctx, collection, spec.Field, idx, false); err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("%w: index on %s.%s", domain.ErrAlreadyExists, collection, spec.Field)
		}
		return fmt.Errorf("create index on %s.%s: %w", collection, spec.Field, err)
	}
	return nil
}

// LoadCollection loads the collection into query nodes and waits.
func (s *Store) LoadCollection(ctx context.Context, collection string) error {
	if err := s.client.LoadCollection(ctx, collection, false); err != nil {
		return fmt.Errorf("load collection %s: %w", collection, err)
	}
	return nil
}

// Insert appends rows as column batches.
func (s *Store) Insert(ctx context.Context, collection string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	cols := toColumns(records, len(records[0].Vector))
	if _, err := s.client.Insert(ctx, collection, "", cols...); err != nil {
		return fmt.Errorf("insert %d rows into %s: %w", len(records), collection, err)
	}
	return nil
}

// Flush seals inserted rows so searches see them.
func (s *Store) Flush(ctx context.Context, collection string) error {
	if err := s.client.Flush(ctx, collection, false); err != nil {
		return fmt.Errorf("flush %s: %w", collection, err)
	}
	return nil
}

// Search runs a single-vector top-K search returning the text field.
func (s *Store) Search(ctx context.Context, collection string, req domain.SearchRequest) ([]domain.SearchHit, error) {
	metric, err := toEntityMetric(req.Metric)
	if err != nil {
		return nil, err
	}
	sp, err := entity.NewIndexIvfFlatSearchParam(req.ProbeWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	results, err := s.client.Search(ctx, collection, nil, "", []string{domain.FieldText},
		[]entity.Vector{entity.FloatVector(req.Vector)}, req.Field, metric, req.TopK, sp)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", collection, err)
	}
	return fromSearchResults(results)
}

// Close closes the client connection.
func (s *Store) Close() error {
	return s.client.Close()
}
