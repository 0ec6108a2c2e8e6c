package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"github.com/staysocial/staysocial-backend/internal/db/query"
)

// Repository implements the Repository interface for in-memory storage
type Repository struct {
	db        *Database
	schema    *interfaces.Schema
	builder   *query.Builder
	tableName string
}

// NewRepository creates a new in-memory repository
func NewRepository(db *Database, schema *interfaces.Schema) *Repository {
	return &Repository{
		db:        db,
		schema:    schema,
		builder:   query.NewBuilder(schema),
		tableName: schema.TableName,
	}
}

// GetByID retrieves a single record by its ID
func (r *Repository) GetByID(ctx context.Context, id interfaces.ID) (map[string]interface{}, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	if !r.db.connected {
		return nil, notConnected("get")
	}

	record, exists := r.db.tables[r.tableName][id.String()]
	if !exists {
		return nil, interfaces.ErrNotFound
	}

	return copyRecord(record), nil
}

// FindOne retrieves the first record matching the query
func (r *Repository) FindOne(ctx context.Context, q *interfaces.Query) (map[string]interface{}, error) {
	limit := 1
	narrowed := interfaces.Query{Limit: &limit}
	if q != nil {
		narrowed.Where = q.Where
		narrowed.OrderBy = q.OrderBy
		narrowed.Offset = q.Offset
	}

	result, err := r.FindMany(ctx, &narrowed)
	if err != nil {
		return nil, err
	}

	if len(result.Data) == 0 {
		return nil, interfaces.ErrNotFound
	}

	return result.Data[0], nil
}

// FindMany retrieves multiple records matching the query with pagination
func (r *Repository) FindMany(ctx context.Context, q *interfaces.Query) (*interfaces.ResultPage, error) {
	if q == nil {
		q = &interfaces.Query{}
	}

	r.db.mu.RLock()
	if !r.db.connected {
		r.db.mu.RUnlock()
		return nil, notConnected("find")
	}
	records := make([]map[string]interface{}, 0, len(r.db.tables[r.tableName]))
	for _, record := range r.db.tables[r.tableName] {
		if q.Where == nil || r.builder.MatchesFilters(record, q.Where) {
			records = append(records, copyRecord(record))
		}
	}
	r.db.mu.RUnlock()

	total := int64(len(records))

	// Map iteration is random, so an explicit order is always applied
	orderBy := q.OrderBy
	if len(orderBy) == 0 {
		orderBy = r.defaultOrder()
	}
	records = r.builder.ApplySort(records, orderBy)

	offset := 0
	if q.Offset != nil {
		offset = *q.Offset
	}
	pageSize := len(records)
	if q.Limit != nil {
		pageSize = *q.Limit
	}

	records = r.builder.ApplyPagination(records, q.Limit, q.Offset)

	page := 1
	if pageSize > 0 {
		page = (offset / pageSize) + 1
	}

	return &interfaces.ResultPage{
		Data:     records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create inserts a new record
func (r *Repository) Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	if err := r.builder.ValidateData(data, false); err != nil {
		return nil, &interfaces.DatabaseError{Op: "create " + r.tableName, Err: fmt.Errorf("%w: %v", interfaces.ErrValidation, err)}
	}

	record := copyRecord(data)

	if id, exists := record["id"]; !exists || id == "" {
		record["id"] = uuid.New().String()
	}
	id, ok := record["id"].(string)
	if !ok {
		return nil, &interfaces.DatabaseError{Op: "create " + r.tableName, Err: fmt.Errorf("%w: id must be a string", interfaces.ErrValidation)}
	}

	now := time.Now()
	if _, exists := record["created_at"]; !exists {
		record["created_at"] = now
	}
	record["updated_at"] = now

	for fieldName, fieldSchema := range r.schema.Fields {
		if _, exists := record[fieldName]; !exists && fieldSchema.DefaultValue != nil {
			record[fieldName] = fieldSchema.DefaultValue
		}
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.connected {
		return nil, notConnected("create " + r.tableName)
	}

	if _, exists := r.db.tables[r.tableName]; !exists {
		r.db.tables[r.tableName] = make(table)
	}
	records := r.db.tables[r.tableName]

	if _, exists := records[id]; exists {
		return nil, fmt.Errorf("%w: id '%s'", interfaces.ErrAlreadyExists, id)
	}

	if err := r.validateUniqueConstraints(records, record, ""); err != nil {
		return nil, err
	}

	if err := r.validateForeignKeyConstraints(record); err != nil {
		return nil, err
	}

	for fieldName, fieldSchema := range r.schema.Fields {
		if fieldSchema.AutoIncrement {
			r.db.sequences[r.tableName]++
			record[fieldName] = r.db.sequences[r.tableName]
		}
	}

	r.journal(ctx, r.tableName, id, nil)
	records[id] = record
	return copyRecord(record), nil
}

// Update modifies an existing record by ID
func (r *Repository) Update(ctx context.Context, id interfaces.ID, data map[string]interface{}) (map[string]interface{}, error) {
	return r.update(ctx, id, nil, data)
}

// UpdateWhere modifies the record only if it still matches where. The check
// and the write happen under one lock.
func (r *Repository) UpdateWhere(ctx context.Context, id interfaces.ID, where *interfaces.Filters, data map[string]interface{}) (map[string]interface{}, error) {
	return r.update(ctx, id, where, data)
}

func (r *Repository) update(ctx context.Context, id interfaces.ID, where *interfaces.Filters, data map[string]interface{}) (map[string]interface{}, error) {
	if err := r.builder.ValidateData(data, true); err != nil {
		return nil, &interfaces.DatabaseError{Op: "update " + r.tableName, Err: fmt.Errorf("%w: %v", interfaces.ErrValidation, err)}
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.connected {
		return nil, notConnected("update " + r.tableName)
	}

	records := r.db.tables[r.tableName]
	existing, exists := records[id.String()]
	if !exists {
		return nil, interfaces.ErrNotFound
	}
	if where != nil && !r.builder.MatchesFilters(existing, where) {
		return nil, interfaces.ErrConditionFailed
	}

	updated := copyRecord(existing)
	for k, v := range data {
		if k == "id" || k == "created_at" || r.isAutoIncrement(k) {
			continue
		}
		if s, ok := v.([]string); ok {
			v = append([]string(nil), s...)
		}
		updated[k] = v
	}
	updated["updated_at"] = time.Now()

	if err := r.validateUniqueConstraints(records, updated, id.String()); err != nil {
		return nil, err
	}

	if err := r.validateForeignKeyConstraints(updated); err != nil {
		return nil, err
	}

	r.journal(ctx, r.tableName, id.String(), existing)
	records[id.String()] = updated
	return copyRecord(updated), nil
}

// Delete removes a record by ID
func (r *Repository) Delete(ctx context.Context, id interfaces.ID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if !r.db.connected {
		return notConnected("delete " + r.tableName)
	}

	records := r.db.tables[r.tableName]
	existing, exists := records[id.String()]
	if !exists {
		return interfaces.ErrNotFound
	}

	if err := r.applyOnDelete(ctx, id.String()); err != nil {
		return err
	}

	r.journal(ctx, r.tableName, id.String(), existing)
	delete(records, id.String())
	return nil
}

// Count returns the number of records matching the query
func (r *Repository) Count(ctx context.Context, q *interfaces.Query) (int64, error) {
	if q == nil || q.Where == nil {
		r.db.mu.RLock()
		defer r.db.mu.RUnlock()
		if !r.db.connected {
			return 0, notConnected("count " + r.tableName)
		}
		return int64(len(r.db.tables[r.tableName])), nil
	}

	result, err := r.FindMany(ctx, &interfaces.Query{Where: q.Where})
	if err != nil {
		return 0, err
	}

	return result.Total, nil
}

// GetSchema returns the schema for this repository
func (r *Repository) GetSchema() *interfaces.Schema {
	return r.schema
}

func (r *Repository) defaultOrder() []interfaces.OrderBy {
	for fieldName, fieldSchema := range r.schema.Fields {
		if fieldSchema.AutoIncrement {
			return []interfaces.OrderBy{{Field: fieldName, Direction: "asc"}}
		}
	}
	return []interfaces.OrderBy{{Field: "created_at", Direction: "asc"}, {Field: "id", Direction: "asc"}}
}

func (r *Repository) isAutoIncrement(fieldName string) bool {
	fieldSchema, ok := r.schema.Fields[fieldName]
	return ok && fieldSchema.AutoIncrement
}

// journal remembers the row image a write replaces when ctx belongs to an
// open transaction. Stored rows are never mutated in place, so prev stays
// valid. Callers hold db.mu.
func (r *Repository) journal(ctx context.Context, table, id string, prev map[string]interface{}) {
	if tx := transactionFrom(ctx, r.db); tx != nil {
		tx.record(table, id, prev)
	}
}

// Helper methods for constraint validation. Callers hold db.mu.

func (r *Repository) validateUniqueConstraints(records table, record map[string]interface{}, excludeID string) error {
	for fieldName, fieldSchema := range r.schema.Fields {
		if !fieldSchema.Unique {
			continue
		}

		value, exists := record[fieldName]
		if !exists || value == nil {
			continue
		}

		for id, existing := range records {
			if id == excludeID {
				continue
			}
			if existingValue, exists := existing[fieldName]; exists && query.Equal(existingValue, value) {
				return fmt.Errorf("%w: field '%s' value '%v'", interfaces.ErrUniqueConstraint, fieldName, value)
			}
		}
	}

	for _, index := range r.schema.Indexes {
		if !index.Unique {
			continue
		}

		for id, existing := range records {
			if id == excludeID {
				continue
			}

			match := true
			for _, column := range index.Columns {
				if !query.Equal(existing[column], record[column]) {
					match = false
					break
				}
			}
			if match {
				return fmt.Errorf("%w: unique index '%s'", interfaces.ErrUniqueConstraint, index.Name)
			}
		}
	}

	return nil
}

func (r *Repository) validateForeignKeyConstraints(record map[string]interface{}) error {
	for fieldName, fieldSchema := range r.schema.Fields {
		if fieldSchema.ForeignKey == nil {
			continue
		}

		value, exists := record[fieldName]
		if !exists || value == nil || value == "" {
			continue
		}

		refTable, exists := r.db.tables[fieldSchema.ForeignKey.Table]
		if !exists {
			return fmt.Errorf("%w: referenced table '%s' does not exist", interfaces.ErrForeignKeyConstraint, fieldSchema.ForeignKey.Table)
		}

		found := false
		for _, refRecord := range refTable {
			if refValue, exists := refRecord[fieldSchema.ForeignKey.Column]; exists && query.Equal(refValue, value) {
				found = true
				break
			}
		}

		if !found {
			return fmt.Errorf("%w: field '%s' references non-existent record '%v'", interfaces.ErrForeignKeyConstraint, fieldName, value)
		}
	}

	return nil
}

// applyOnDelete walks the registered schemas for foreign keys pointing at
// this table. SET_NULL clears the reference; anything else blocks the delete.
func (r *Repository) applyOnDelete(ctx context.Context, id string) error {
	type reference struct {
		table string
		field string
		ids   []string
	}
	var toClear []reference

	for tableName, schema := range r.db.schemas {
		for fieldName, fieldSchema := range schema.Fields {
			fk := fieldSchema.ForeignKey
			if fk == nil || fk.Table != r.tableName {
				continue
			}

			var referencing []string
			for refID, record := range r.db.tables[tableName] {
				if query.Equal(record[fieldName], id) {
					referencing = append(referencing, refID)
				}
			}
			if len(referencing) == 0 {
				continue
			}

			if fk.OnDelete != "SET_NULL" {
				return fmt.Errorf("%w: record is referenced by table '%s', field '%s'", interfaces.ErrForeignKeyConstraint, tableName, fieldName)
			}
			toClear = append(toClear, reference{table: tableName, field: fieldName, ids: referencing})
		}
	}

	for _, ref := range toClear {
		for _, refID := range ref.ids {
			existing := r.db.tables[ref.table][refID]
			cleared := copyRecord(existing)
			cleared[ref.field] = nil
			r.journal(ctx, ref.table, refID, existing)
			r.db.tables[ref.table][refID] = cleared
		}
	}
	return nil
}

var _ interfaces.Repository = (*Repository)(nil)
