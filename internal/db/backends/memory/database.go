package memory

import (
	"context"
	"sync"

	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"go.uber.org/zap"
)

type table = map[string]map[string]interface{} // recordID -> record

// Database implements the Database interface for in-memory storage
type Database struct {
	mu        sync.RWMutex
	tables    map[string]table              // tableName -> records
	schemas   map[string]*interfaces.Schema // tableName -> schema
	sequences map[string]int64              // tableName -> last auto-increment value
	connected bool
	logger    *zap.SugaredLogger
}

// NewDatabase creates a new in-memory database. A nil logger disables logging.
func NewDatabase(logger *zap.SugaredLogger) *Database {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Database{
		tables:    make(map[string]table),
		schemas:   make(map[string]*interfaces.Schema),
		sequences: make(map[string]int64),
		logger:    logger,
	}
}

// Connect establishes a connection to the database
func (db *Database) Connect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = true
	db.logger.Debugw("Connected to in-memory database")
	return nil
}

// Disconnect drops all tables; the in-memory store keeps nothing across sessions
func (db *Database) Disconnect(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.connected = false
	db.tables = make(map[string]table)
	db.schemas = make(map[string]*interfaces.Schema)
	db.sequences = make(map[string]int64)
	db.logger.Debugw("Disconnected from in-memory database")
	return nil
}

// IsHealthy checks if the database connection is healthy
func (db *Database) IsHealthy(ctx context.Context) bool {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.connected
}

// Transaction executes fn and reverts the rows fn wrote when it fails. Writes
// are journaled only when made with the ctx passed to fn.
func (db *Database) Transaction(ctx context.Context, fn func(ctx context.Context, tx interfaces.Transaction) error) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

	tx := NewTransaction(db)
	ctx = tx.Context(ctx)

	defer func() {
		if !tx.IsCompleted() {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			db.logger.Warnw("Rollback failed", "error", rbErr)
		}
		return err
	}

	return tx.Commit(ctx)
}

// Repository returns a repository for the given schema
func (db *Database) Repository(schema *interfaces.Schema) interfaces.Repository {
	db.mu.Lock()
	db.schemas[schema.TableName] = schema
	db.mu.Unlock()

	return NewRepository(db, schema)
}

// Migrate creates tables and applies schema changes
func (db *Database) Migrate(ctx context.Context, schemas []*interfaces.Schema) error {
	if !db.IsHealthy(ctx) {
		return interfaces.ErrDatabaseNotConnected
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	for _, schema := range schemas {
		db.schemas[schema.TableName] = schema

		if _, exists := db.tables[schema.TableName]; !exists {
			db.tables[schema.TableName] = make(table)
			db.logger.Debugw("Created in-memory table", "table", schema.TableName)
		}
	}

	db.logger.Infow("Migration completed", "schemas", len(schemas))
	return nil
}

// Seed inserts initial data into the database and reports how many records landed
func (db *Database) Seed(ctx context.Context, schema *interfaces.Schema, data []map[string]interface{}) (int, error) {
	if !db.IsHealthy(ctx) {
		return 0, interfaces.ErrDatabaseNotConnected
	}

	repo := db.Repository(schema)

	seeded := 0
	for i, record := range data {
		if _, err := repo.Create(ctx, record); err != nil {
			db.logger.Warnw("Failed to seed record", "index", i, "table", schema.TableName, "error", err)
			continue
		}
		seeded++
	}

	db.logger.Infow("Seeded table", "table", schema.TableName, "records", seeded)
	return seeded, nil
}

// GetTables returns all table names (for debugging/testing)
func (db *Database) GetTables() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()

	tables := make([]string, 0, len(db.tables))
	for name := range db.tables {
		tables = append(tables, name)
	}
	return tables
}

// Clear removes all data from all tables (for testing)
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()

	for tableName := range db.tables {
		db.tables[tableName] = make(table)
	}
}

// copyRecord clones a record so callers never share slices with the store
func copyRecord(record map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(record))
	for k, v := range record {
		if s, ok := v.([]string); ok {
			v = append([]string(nil), s...)
		}
		result[k] = v
	}
	return result
}

func notConnected(op string) error {
	return &interfaces.DatabaseError{Op: op, Err: interfaces.ErrDatabaseNotConnected}
}

var _ interfaces.Database = (*Database)(nil)
