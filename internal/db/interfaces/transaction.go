package interfaces

import "context"

// Transaction is the handle passed to Database.Transaction callbacks. The
// database commits when the callback returns nil and rolls back otherwise;
// callbacks rarely need to call either method themselves.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// IsCompleted reports whether Commit or Rollback already ran
	IsCompleted() bool
}
