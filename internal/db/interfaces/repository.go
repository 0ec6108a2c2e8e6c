package interfaces

import "context"

// Repository is the table-level API the post, approval and asset services
// use. Records are column maps keyed by the schema's field names.
type Repository interface {
	GetByID(ctx context.Context, id ID) (map[string]interface{}, error)
	FindOne(ctx context.Context, query *Query) (map[string]interface{}, error)

	// FindMany applies Where, OrderBy, Limit and Offset in that order
	FindMany(ctx context.Context, query *Query) (*ResultPage, error)

	// Create fills the primary key, defaults and timestamps, then validates
	// the record against the schema
	Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error)

	// Update merges data into the stored record; absent columns keep their value
	Update(ctx context.Context, id ID, data map[string]interface{}) (map[string]interface{}, error)

	// UpdateWhere is Update guarded by a condition on the stored record. It
	// returns ErrConditionFailed, without writing, when the record no longer
	// matches where.
	UpdateWhere(ctx context.Context, id ID, where *Filters, data map[string]interface{}) (map[string]interface{}, error)

	// Delete applies the schema's ON DELETE rules to referencing tables
	Delete(ctx context.Context, id ID) error

	Count(ctx context.Context, query *Query) (int64, error)
	GetSchema() *Schema
}
