package query

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
)

// Builder evaluates queries against records of a single schema
type Builder struct {
	schema *interfaces.Schema
}

// NewBuilder creates a new query builder for a schema
func NewBuilder(schema *interfaces.Schema) *Builder {
	return &Builder{schema: schema}
}

// MatchesFilters checks if a record matches the given filters
func (b *Builder) MatchesFilters(record map[string]interface{}, filters *interfaces.Filters) bool {
	if filters == nil {
		return true
	}

	for _, andFilter := range filters.AND {
		if !b.MatchesFilters(record, andFilter) {
			return false
		}
	}

	if len(filters.OR) > 0 {
		hasMatch := false
		for _, orFilter := range filters.OR {
			if b.MatchesFilters(record, orFilter) {
				hasMatch = true
				break
			}
		}
		if !hasMatch {
			return false
		}
	}

	for _, condition := range filters.Conditions {
		if !b.matchesCondition(record, condition) {
			return false
		}
	}

	return true
}

func (b *Builder) matchesCondition(record map[string]interface{}, condition interfaces.Filter) bool {
	fieldValue, exists := record[condition.Field]

	if condition.Operator == nil {
		if !exists || fieldValue == nil {
			return condition.Value == nil
		}
		return Equal(fieldValue, condition.Value)
	}

	if !exists {
		return false
	}

	op := condition.Operator
	switch {
	case op.Eq != nil:
		return Equal(fieldValue, op.Eq)
	case op.Ne != nil:
		return !Equal(fieldValue, op.Ne)
	case op.Gt != nil:
		return Compare(fieldValue, op.Gt) > 0
	case op.Gte != nil:
		return Compare(fieldValue, op.Gte) >= 0
	case op.Lt != nil:
		return Compare(fieldValue, op.Lt) < 0
	case op.Lte != nil:
		return Compare(fieldValue, op.Lte) <= 0
	case len(op.In) > 0:
		for _, val := range op.In {
			if Equal(fieldValue, val) {
				return true
			}
		}
		return false
	case op.Like != "":
		strValue, ok := fieldValue.(string)
		if !ok {
			return false
		}
		pattern := strings.ReplaceAll(op.Like, "%", "")
		if op.CaseSensitive != nil && !*op.CaseSensitive {
			strValue = strings.ToLower(strValue)
			pattern = strings.ToLower(pattern)
		}
		return strings.Contains(strValue, pattern)
	}

	return true
}

// Equal compares a stored field value with a query value. A []string field
// matches a string value when it contains it.
func Equal(fieldValue, value interface{}) bool {
	switch fv := fieldValue.(type) {
	case []string:
		if s, ok := value.(string); ok {
			for _, item := range fv {
				if item == s {
					return true
				}
			}
			return false
		}
	case time.Time:
		if tv, ok := value.(time.Time); ok {
			return fv.Equal(tv)
		}
		return false
	}
	return reflect.DeepEqual(fieldValue, value)
}

// Compare orders two values of the same kind. Mismatched kinds compare equal.
func Compare(a, other interface{}) int {
	switch av := a.(type) {
	case int:
		if bv, ok := other.(int); ok {
			return compareOrdered(av, bv)
		}
	case int64:
		if bv, ok := other.(int64); ok {
			return compareOrdered(av, bv)
		}
	case float64:
		if bv, ok := other.(float64); ok {
			return compareOrdered(av, bv)
		}
	case string:
		if bv, ok := other.(string); ok {
			return strings.Compare(av, bv)
		}
	case time.Time:
		if bv, ok := other.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return 0
}

func compareOrdered[T int | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// ApplySort sorts records according to the OrderBy specification. The sort is
// stable so records equal on every key keep their incoming order.
func (b *Builder) ApplySort(records []map[string]interface{}, orderBy []interfaces.OrderBy) []map[string]interface{} {
	if len(orderBy) == 0 {
		return records
	}

	sorted := make([]map[string]interface{}, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		for _, order := range orderBy {
			cmp := Compare(sorted[i][order.Field], sorted[j][order.Field])
			if cmp == 0 {
				continue
			}
			if order.Direction == "desc" {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})

	return sorted
}

// ApplyPagination applies limit and offset to the records
func (b *Builder) ApplyPagination(records []map[string]interface{}, limit, offset *int) []map[string]interface{} {
	start := 0
	if offset != nil && *offset > 0 {
		start = *offset
	}

	if start >= len(records) {
		return []map[string]interface{}{}
	}

	end := len(records)
	if limit != nil && *limit >= 0 {
		end = start + *limit
		if end > len(records) {
			end = len(records)
		}
	}

	return records[start:end]
}

// ValidateData validates data against the schema. When partial is set only
// the fields present in data are checked, which is what updates need.
func (b *Builder) ValidateData(data map[string]interface{}, partial bool) error {
	for fieldName, fieldSchema := range b.schema.Fields {
		value, exists := data[fieldName]

		// System fields are filled in by the backend
		if fieldName == "id" || fieldName == "created_at" || fieldName == "updated_at" || fieldSchema.AutoIncrement {
			continue
		}

		if !exists {
			if !partial && !fieldSchema.Nullable && fieldSchema.DefaultValue == nil {
				return fmt.Errorf("field '%s' is required", fieldName)
			}
			continue
		}

		if value == nil {
			if !fieldSchema.Nullable {
				return fmt.Errorf("field '%s' cannot be null", fieldName)
			}
			continue
		}

		if err := validateFieldType(fieldName, value, fieldSchema.Type); err != nil {
			return err
		}
	}

	for fieldName := range data {
		if _, known := b.schema.Fields[fieldName]; !known {
			return fmt.Errorf("unknown field '%s' for table %s", fieldName, b.schema.TableName)
		}
	}

	return nil
}

func validateFieldType(fieldName string, value interface{}, expectedType string) error {
	ok := true
	switch expectedType {
	case "string":
		_, ok = value.(string)
	case "strings":
		_, ok = value.([]string)
	case "int":
		_, ok = value.(int)
	case "int64":
		_, ok = value.(int64)
	case "bool":
		_, ok = value.(bool)
	case "float64":
		_, ok = value.(float64)
	case "time":
		_, ok = value.(time.Time)
	}
	if !ok {
		return fmt.Errorf("field '%s' must be of type %s, got %T", fieldName, expectedType, value)
	}
	return nil
}
