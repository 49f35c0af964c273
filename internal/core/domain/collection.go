package domain

import "fmt"

// Collection field names.
const (
	FieldID     = "id"
	FieldVector = "vector"
	FieldText   = "text"
)

// FieldType enumerates the column types the collection uses.
type FieldType string

// Supported field types.
const (
	FieldTypeVarChar     FieldType = "varchar"
	FieldTypeFloatVector FieldType = "float_vector"
)

// MetricType is the similarity metric of an index or search.
type MetricType string

// Supported metrics.
const (
	// MetricInnerProduct scores by dot product (higher = more similar).
	MetricInnerProduct MetricType = "IP"
)

// IndexType names an approximate nearest neighbour index.
type IndexType string

// Supported index types.
const (
	IndexIVFFlat IndexType = "IVF_FLAT"
)

// ConsistencyLevel controls when writes become visible to searches.
type ConsistencyLevel string

// Supported consistency levels.
const (
	// ConsistencyStrong makes a flushed write visible to every later search.
	ConsistencyStrong ConsistencyLevel = "Strong"
)

// FieldSchema describes one column of the collection.
type FieldSchema struct {
	Name       string
	Type       FieldType
	PrimaryKey bool

	// MaxLength bounds VarChar fields.
	MaxLength int

	// Dim is the vector dimension of FloatVector fields.
	Dim int
}

// CollectionSchema describes a named vector collection.
type CollectionSchema struct {
	Name        string
	Description string
	Fields      []FieldSchema
	Consistency ConsistencyLevel
}

// Field returns the named field, or false if the schema has none.
func (s CollectionSchema) Field(name string) (FieldSchema, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSchema{}, false
}

// Dimension returns the dimension of the vector field, or 0 if the schema has none.
func (s CollectionSchema) Dimension() int {
	f, ok := s.Field(FieldVector)
	if !ok {
		return 0
	}
	return f.Dim
}

// Validate checks the schema carries the three fields the pipeline relies on.
func (s CollectionSchema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: collection name is empty", ErrInvalidInput)
	}
	id, ok := s.Field(FieldID)
	if !ok || !id.PrimaryKey || id.Type != FieldTypeVarChar {
		return fmt.Errorf("%w: collection %s needs a varchar primary key %q", ErrInvalidInput, s.Name, FieldID)
	}
	if s.Dimension() <= 0 {
		return fmt.Errorf("%w: collection %s needs a positive %q dimension", ErrInvalidInput, s.Name, FieldVector)
	}
	if _, ok := s.Field(FieldText); !ok {
		return fmt.Errorf("%w: collection %s needs a %q field", ErrInvalidInput, s.Name, FieldText)
	}
	return nil
}

// DocsSchema returns the RAG collection layout: a varchar key, a float vector
// of the given dimension and the chunk text.
func DocsSchema(name string, dim int) CollectionSchema {
	return CollectionSchema{
		Name:        name,
		Description: "RAG collection",
		Fields: []FieldSchema{
			{Name: FieldID, Type: FieldTypeVarChar, PrimaryKey: true, MaxLength: 64},
			{Name: FieldVector, Type: FieldTypeFloatVector, Dim: dim},
			{Name: FieldText, Type: FieldTypeVarChar, MaxLength: 65535},
		},
		Consistency: ConsistencyStrong,
	}
}

// IndexSpec describes an index to build on a vector field.
type IndexSpec struct {
	Field  string
	Type   IndexType
	Metric MetricType

	// NList is the number of IVF clusters (the candidate-list size).
	NList int
}

// IndexDescriptor describes an existing index.
type IndexDescriptor struct {
	Name   string
	Field  string
	Type   IndexType
	Metric MetricType
}

// SearchRequest is a top-K similarity query.
type SearchRequest struct {
	Vector []float32
	Field  string
	Metric MetricType
	TopK   int

	// ProbeWidth is the number of IVF clusters probed. Higher trades latency for recall.
	ProbeWidth int
}
