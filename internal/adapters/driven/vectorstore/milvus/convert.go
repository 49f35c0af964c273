package milvus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"github.com/custodia-labs/ragd/internal/core/domain"
)

// toEntitySchema converts a domain schema into a Milvus schema.
func toEntitySchema(s domain.CollectionSchema) (*entity.Schema, error) {
	schema := entity.NewSchema().WithName(s.Name).WithDescription(s.Description)
	for _, f := range s.Fields {
		field := entity.NewField().WithName(f.Name)
		switch f.Type {
		case domain.FieldTypeVarChar:
			field = field.WithDataType(entity.FieldTypeVarChar).WithMaxLength(int64(f.MaxLength))
		case domain.FieldTypeFloatVector:
			field = field.WithDataType(entity.FieldTypeFloatVector).WithDim(int64(f.Dim))
		default:
			return nil, fmt.Errorf("%w: field %s has unsupported type %q", domain.ErrInvalidInput, f.Name, f.Type)
		}
		if f.PrimaryKey {
			field = field.WithIsPrimaryKey(true)
		}
		schema = schema.WithField(field)
	}
	return schema, nil
}

// fromEntityCollection converts a described Milvus collection back into a domain schema.
func fromEntityCollection(c *entity.Collection) (domain.CollectionSchema, error) {
	if c == nil || c.Schema == nil {
		return domain.CollectionSchema{}, fmt.Errorf("%w: empty collection description", domain.ErrStoreFault)
	}
	out := domain.CollectionSchema{
		Name:        c.Name,
		Description: c.Schema.Description,
	}
	if out.Name == "" {
		out.Name = c.Schema.CollectionName
	}
	if c.ConsistencyLevel == entity.ClStrong {
		out.Consistency = domain.ConsistencyStrong
	}
	for _, f := range c.Schema.Fields {
		fs := domain.FieldSchema{Name: f.Name, PrimaryKey: f.PrimaryKey}
		switch f.DataType {
		case entity.FieldTypeVarChar:
			fs.Type = domain.FieldTypeVarChar
			fs.MaxLength = typeParam(f, entity.TypeParamMaxLength)
		case entity.FieldTypeFloatVector:
			fs.Type = domain.FieldTypeFloatVector
			fs.Dim = typeParam(f, entity.TypeParamDim)
		default:
			// Fields the pipeline does not use keep their SDK type name.
			fs.Type = domain.FieldType(strings.ToLower(f.DataType.String()))
		}
		out.Fields = append(out.Fields, fs)
	}
	return out, nil
}

func typeParam(f *entity.Field, key string) int {
	v, err := strconv.Atoi(f.TypeParams[key])
	if err != nil {
		return 0
	}
	return v
}

// toEntityIndex builds the SDK index for a domain spec.
func toEntityIndex(spec domain.IndexSpec) (entity.Index, error) {
	metric, err := toEntityMetric(spec.Metric)
	if err != nil {
		return nil, err
	}
	switch spec.Type {
	case domain.IndexIVFFlat:
		idx, err := entity.NewIndexIvfFlat(metric, spec.NList)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("%w: unsupported index type %q", domain.ErrInvalidInput, spec.Type)
	}
}

func toEntityMetric(m domain.MetricType) (entity.MetricType, error) {
	switch m {
	case domain.MetricInnerProduct:
		return entity.IP, nil
	default:
		return "", fmt.Errorf("%w: unsupported metric %q", domain.ErrInvalidInput, m)
	}
}

// fromEntityIndex describes an SDK index built on field.
func fromEntityIndex(field string, idx entity.Index) domain.IndexDescriptor {
	params := idx.Params()
	return domain.IndexDescriptor{
		Name:   idx.Name(),
		Field:  field,
		Type:   domain.IndexType(idx.IndexType()),
		Metric: domain.MetricType(params["metric_type"]),
	}
}

// toColumns splits records into the three insert columns.
func toColumns(records []domain.VectorRecord, dim int) []entity.Column {
	ids := make([]string, len(records))
	vectors := make([][]float32, len(records))
	texts := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
		vectors[i] = r.Vector
		texts[i] = r.Text
	}
	return []entity.Column{
		entity.NewColumnVarChar(domain.FieldID, ids),
		entity.NewColumnFloatVector(domain.FieldVector, dim, vectors),
		entity.NewColumnVarChar(domain.FieldText, texts),
	}
}

// fromSearchResults converts the result set of a single-vector search.
func fromSearchResults(results []client.SearchResult) ([]domain.SearchHit, error) {
	var hits []domain.SearchHit
	for _, res := range results {
		if res.Err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreFault, res.Err)
		}
		col := res.Fields.GetColumn(domain.FieldText)
		if col == nil {
			return nil, fmt.Errorf("%w: search result has no %q field", domain.ErrStoreFault, domain.FieldText)
		}
		texts, ok := col.(*entity.ColumnVarChar)
		if !ok {
			return nil, fmt.Errorf("%w: %q field is %T", domain.ErrStoreFault, domain.FieldText, col)
		}
		for i := 0; i < res.ResultCount; i++ {
			text, err := texts.ValueByIdx(i)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrStoreFault, err)
			}
			hit := domain.SearchHit{Text: text}
			if i < len(res.Scores) {
				hit.Score = res.Scores[i]
			}
			hits = append(hits, hit)
		}
	}
	return hits, nil
}

// isAlreadyExists reports whether a Milvus error means the entity exists.
func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exist") || strings.Contains(msg, "at most one distinct index")
}

// isIndexNotFound reports whether a describe-index error means no index is built.
func isIndexNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "index not found") || strings.Contains(msg, "index not exist") ||
		strings.Contains(msg, "index doesn't exist")
}
