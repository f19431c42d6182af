package service

import (
	"context"
	"database/sql"

	"github.com/calvora/conduit/internal/store"
)

// runInTx executes fn within a database transaction when a database handle
// is configured. Services built on in-memory stores (tests) pass a nil
// handle; those stores are atomic per call and run fn directly with a nil
// transaction.
func runInTx(ctx context.Context, db *sql.DB, fn store.TxFn) error {
	if db == nil {
		return fn(ctx, nil)
	}
	return store.RunInTransaction(ctx, db, fn)
}
