// Package memory provides an in-process vector store.
// It backs --store=memory and the service tests. Records are lost on exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

type collection struct {
	schema  domain.CollectionSchema
	indexes []domain.IndexDescriptor
	loaded  bool

	// pending rows become visible to search on Flush.
	pending []domain.VectorRecord
	visible []domain.VectorRecord
}

// Store is an in-memory implementation of driven.VectorStore using
// brute-force inner-product search.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates an empty store.
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) get(name string) (*collection, error) {
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: collection %s", domain.ErrNotFound, name)
	}
	return c, nil
}

// HasCollection reports whether the named collection exists.
func (s *Store) HasCollection(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// CreateCollection creates a collection with the given schema.
func (s *Store) CreateCollection(_ context.Context, schema domain.CollectionSchema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[schema.Name]; ok {
		return fmt.Errorf("%w: collection %s", domain.ErrAlreadyExists, schema.Name)
	}
	s.collections[schema.Name] = &collection{schema: schema}
	return nil
}

// DescribeCollection returns the schema of an existing collection.
func (s *Store) DescribeCollection(_ context.Context, name string) (domain.CollectionSchema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.get(name)
	if err != nil {
		return domain.CollectionSchema{}, err
	}
	return c.schema, nil
}

// ListIndexes describes the indexes built on the collection.
func (s *Store) ListIndexes(_ context.Context, name string) ([]domain.IndexDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.get(name)
	if err != nil {
		return nil, err
	}
	out := make([]domain.IndexDescriptor, len(c.indexes))
	copy(out, c.indexes)
	return out, nil
}

// CreateIndex records an index on a field. The search itself stays brute force.
func (s *Store) CreateIndex(_ context.Context, name string, spec domain.IndexSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(name)
	if err != nil {
		return err
	}
	if _, ok := c.schema.Field(spec.Field); !ok {
		return fmt.Errorf("%w: collection %s has no field %q", domain.ErrInvalidInput, name, spec.Field)
	}
	for _, idx := range c.indexes {
		if idx.Field == spec.Field {
			return fmt.Errorf("%w: index on %s.%s", domain.ErrAlreadyExists, name, spec.Field)
		}
	}
	c.indexes = append(c.indexes, domain.IndexDescriptor{
		Name:   spec.Field + "_idx",
		Field:  spec.Field,
		Type:   spec.Type,
		Metric: spec.Metric,
	})
	return nil
}

// LoadCollection marks the collection queryable.
func (s *Store) LoadCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(name)
	if err != nil {
		return err
	}
	c.loaded = true
	return nil
}

// Insert appends rows. They are not searchable until Flush.
func (s *Store) Insert(_ context.Context, name string, records []domain.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(name)
	if err != nil {
		return err
	}
	dim := c.schema.Dimension()
	for i := range records {
		if len(records[i].Vector) != dim {
			return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(records[i].Vector), dim)
		}
	}
	for _, r := range records {
		v := make([]float32, len(r.Vector))
		copy(v, r.Vector)
		c.pending = append(c.pending, domain.VectorRecord{ID: r.ID, Vector: v, Text: r.Text})
	}
	return nil
}

// Flush makes pending rows visible.
func (s *Store) Flush(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.get(name)
	if err != nil {
		return err
	}
	c.visible = append(c.visible, c.pending...)
	c.pending = nil
	return nil
}

// Search ranks visible rows by inner product with req.Vector.
// Ties keep insertion order.
func (s *Store) Search(_ context.Context, name string, req domain.SearchRequest) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, err := s.get(name)
	if err != nil {
		return nil, err
	}
	if !c.loaded {
		return nil, fmt.Errorf("collection %s is not loaded", name)
	}
	if req.Metric != "" && req.Metric != domain.MetricInnerProduct {
		return nil, fmt.Errorf("%w: unsupported metric %s", domain.ErrInvalidInput, req.Metric)
	}
	if len(req.Vector) != c.schema.Dimension() {
		return nil, fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(req.Vector), c.schema.Dimension())
	}

	hits := make([]domain.SearchHit, len(c.visible))
	for i := range c.visible {
		hits[i] = domain.SearchHit{Text: c.visible[i].Text, Score: innerProduct(req.Vector, c.visible[i].Vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if req.TopK > 0 && len(hits) > req.TopK {
		hits = hits[:req.TopK]
	}
	return hits, nil
}

// Close is a no-op for in-memory store.
func (s *Store) Close() error {
	return nil
}

// Count returns the number of searchable rows in the collection.
func (s *Store) Count(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0
	}
	return len(c.visible)
}

// Pending returns the number of inserted rows not yet flushed.
func (s *Store) Pending(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0
	}
	return len(c.pending)
}

func innerProduct(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
