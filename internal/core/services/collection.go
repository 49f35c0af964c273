package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ragd/internal/core/domain"
	"github.com/custodia-labs/ragd/internal/core/ports/driven"
	"github.com/custodia-labs/ragd/internal/logger"
)

// VectorStoreManager owns the lifecycle of the document collection.
// It is created once at startup, opened, and shared by the orchestrators.
type VectorStoreManager struct {
	store  driven.VectorStore
	schema domain.CollectionSchema
	index  domain.IndexSpec
	nprobe int
}

// NewVectorStoreManager creates a manager for the collection described by settings.
func NewVectorStoreManager(store driven.VectorStore, settings domain.VectorStoreSettings) *VectorStoreManager {
	return &VectorStoreManager{
		store:  store,
		schema: domain.DocsSchema(settings.Collection, settings.Dimension),
		index: domain.IndexSpec{
			Field:  domain.FieldVector,
			Type:   domain.IndexIVFFlat,
			Metric: domain.MetricInnerProduct,
			NList:  settings.NList,
		},
		nprobe: settings.NProbe,
	}
}

// Collection returns the collection name.
func (m *VectorStoreManager) Collection() string {
	return m.schema.Name
}

// Dimension returns the vector dimension of the collection.
func (m *VectorStoreManager) Dimension() int {
	return m.schema.Dimension()
}

// Open ensures the collection and its vector index exist, then loads the collection.
// Creation races with other processes are absorbed.
func (m *VectorStoreManager) Open(ctx context.Context) error {
	if err := m.schema.Validate(); err != nil {
		return err
	}
	if err := m.ensureCollection(ctx); err != nil {
		return err
	}
	if err := m.ensureIndex(ctx); err != nil {
		return err
	}
	if err := m.store.LoadCollection(ctx, m.schema.Name); err != nil {
		return fmt.Errorf("%w: load collection %s: %w", domain.ErrStoreFault, m.schema.Name, err)
	}
	logger.Info("collection %s ready (dim=%d)", m.schema.Name, m.schema.Dimension())
	return nil
}

func (m *VectorStoreManager) ensureCollection(ctx context.Context) error {
	exists, err := m.store.HasCollection(ctx, m.schema.Name)
	if err != nil {
		return fmt.Errorf("%w: check collection %s: %w", domain.ErrStoreFault, m.schema.Name, err)
	}

	if !exists {
		err := m.store.CreateCollection(ctx, m.schema)
		switch {
		case err == nil:
			logger.Info("created collection %s", m.schema.Name)
			return nil
		case errors.Is(err, domain.ErrAlreadyExists):
			logger.Debug("collection %s created concurrently", m.schema.Name)
		default:
			return fmt.Errorf("%w: create collection %s: %w", domain.ErrStoreFault, m.schema.Name, err)
		}
	}

	existing, err := m.store.DescribeCollection(ctx, m.schema.Name)
	if err != nil {
		logger.Debug("describe collection %s: %v", m.schema.Name, err)
		return nil
	}
	if dim := existing.Dimension(); dim != 0 && dim != m.schema.Dimension() {
		return fmt.Errorf("%w: collection %s has dimension %d, embeddings have %d",
			domain.ErrDimensionMismatch, m.schema.Name, dim, m.schema.Dimension())
	}
	return nil
}

func (m *VectorStoreManager) ensureIndex(ctx context.Context) error {
	indexes, err := m.store.ListIndexes(ctx, m.schema.Name)
	if err != nil {
		// Some stores report a missing index as an error.
		logger.Debug("list indexes on %s: %v", m.schema.Name, err)
		indexes = nil
	}
	for _, idx := range indexes {
		if idx.Field == m.index.Field {
			return nil
		}
	}

	err = m.store.CreateIndex(ctx, m.schema.Name, m.index)
	switch {
	case err == nil:
		logger.Info("created %s index on %s.%s", m.index.Type, m.schema.Name, m.index.Field)
		return nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return nil
	default:
		return fmt.Errorf("%w: create index on %s: %w", domain.ErrStoreFault, m.schema.Name, err)
	}
}

// Insert writes records as one batch. Every vector must match the collection dimension.
func (m *VectorStoreManager) Insert(ctx context.Context, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	dim := m.schema.Dimension()
	for i := range records {
		if len(records[i].Vector) != dim {
			return fmt.Errorf("%w: record %d has %d components, collection %s expects %d",
				domain.ErrDimensionMismatch, i, len(records[i].Vector), m.schema.Name, dim)
		}
	}
	if err := m.store.Insert(ctx, m.schema.Name, records); err != nil {
		return fmt.Errorf("%w: insert %d records: %w", domain.ErrStoreFault, len(records), err)
	}
	return nil
}

// Flush makes inserted records visible to search.
func (m *VectorStoreManager) Flush(ctx context.Context) error {
	if err := m.store.Flush(ctx, m.schema.Name); err != nil {
		return fmt.Errorf("%w: flush %s: %w", domain.ErrStoreFault, m.schema.Name, err)
	}
	return nil
}

// Search returns up to topK hits for vector, best first.
func (m *VectorStoreManager) Search(ctx context.Context, vector []float32, topK int) ([]domain.SearchHit, error) {
	if len(vector) != m.schema.Dimension() {
		return nil, fmt.Errorf("%w: query has %d components, collection %s expects %d",
			domain.ErrDimensionMismatch, len(vector), m.schema.Name, m.schema.Dimension())
	}
	hits, err := m.store.Search(ctx, m.schema.Name, domain.SearchRequest{
		Vector:     vector,
		Field:      m.index.Field,
		Metric:     m.index.Metric,
		TopK:       topK,
		ProbeWidth: m.nprobe,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrStoreFault, m.schema.Name, err)
	}
	return hits, nil
}

// Close releases the underlying store.
func (m *VectorStoreManager) Close() error {
	return m.store.Close()
}
