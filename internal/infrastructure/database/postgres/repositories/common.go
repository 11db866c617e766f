package repositories

import (
	"context"
	"database/sql"
)

// queryExecutor abstracts sql.DB and sql.Tx so queries run the same way
// inside and outside a transaction.
type queryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// scanner abstracts sql.Row and sql.Rows for shared row mappers.
type scanner interface {
	Scan(dest ...any) error
}
