package memory

import (
	"context"
	"sync"

	"github.com/staysocial/staysocial-backend/internal/db/interfaces"
)

type txKey struct{}

// undoEntry is the row image a write replaced; a nil prev means the row did
// not exist before.
type undoEntry struct {
	table string
	id    string
	prev  map[string]interface{}
}

// Transaction journals the writes made through its context so Rollback can
// revert exactly those rows. Writes by other requests are left alone.
// Sequence values consumed inside a rolled back transaction are not reused.
type Transaction struct {
	mu         sync.Mutex
	db         *Database
	undo       []undoEntry
	committed  bool
	rolledBack bool
}

func NewTransaction(db *Database) *Transaction {
	return &Transaction{db: db}
}

// Context returns ctx carrying tx; repository writes made with it are journaled
func (tx *Transaction) Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func transactionFrom(ctx context.Context, db *Database) *Transaction {
	tx, ok := ctx.Value(txKey{}).(*Transaction)
	if !ok || tx.db != db {
		return nil
	}
	return tx
}

// record is called with db.mu held
func (tx *Transaction) record(table, id string, prev map[string]interface{}) {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed || tx.rolledBack {
		return
	}
	tx.undo = append(tx.undo, undoEntry{table: table, id: id, prev: prev})
}

// Commit commits the transaction
func (tx *Transaction) Commit(ctx context.Context) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.committed || tx.rolledBack {
		return interfaces.ErrTransactionCompleted
	}

	tx.committed = true
	tx.undo = nil
	return nil
}

// Rollback restores every row this transaction wrote, newest write first
func (tx *Transaction) Rollback(ctx context.Context) error {
	tx.mu.Lock()
	if tx.committed || tx.rolledBack {
		tx.mu.Unlock()
		return interfaces.ErrTransactionCompleted
	}
	tx.rolledBack = true
	undo := tx.undo
	tx.undo = nil
	tx.mu.Unlock()

	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()

	for i := len(undo) - 1; i >= 0; i-- {
		entry := undo[i]
		records, ok := tx.db.tables[entry.table]
		if !ok {
			continue
		}
		if entry.prev == nil {
			delete(records, entry.id)
			continue
		}
		records[entry.id] = entry.prev
	}
	return nil
}

// IsCompleted returns true if the transaction has been committed or rolled back
func (tx *Transaction) IsCompleted() bool {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	return tx.committed || tx.rolledBack
}

var _ interfaces.Transaction = (*Transaction)(nil)
