package db

import (
	"context"
	"fmt"

	"github.com/staysocial/staysocial-backend/internal/db/backends/memory"
	"github.com/staysocial/staysocial-backend/internal/db/entities"
	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
	"go.uber.org/zap"
)

// Config holds database configuration
type Config struct {
	Type string // only "memory" is supported; business data lives for the process lifetime
}

// NewDatabase creates a new database instance based on configuration
func NewDatabase(config *Config, logger *zap.SugaredLogger) (interfaces.Database, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Type == "" {
		config.Type = "memory"
	}

	switch config.Type {
	case "memory":
		return memory.NewDatabase(logger), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// NewInMemoryDatabase creates a new in-memory database instance
func NewInMemoryDatabase(logger *zap.SugaredLogger) interfaces.Database {
	return memory.NewDatabase(logger)
}

// AllSchemas returns all entity schemas for migration. Order matters:
// approvals reference posts.
func AllSchemas() []*interfaces.Schema {
	return []*interfaces.Schema{
		entities.PostSchema,
		entities.ApprovalSchema,
		entities.AssetSchema,
	}
}

// ConnectAndMigrate connects to the database and runs migrations
func ConnectAndMigrate(ctx context.Context, db interfaces.Database, schemas []*interfaces.Schema) error {
	if err := db.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if !db.IsHealthy(ctx) {
		return fmt.Errorf("database health check failed")
	}

	if err := db.Migrate(ctx, schemas); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	return nil
}
