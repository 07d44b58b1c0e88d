package repository

import "context"

// QueryExecutor runs parameterized SQL and scans the returned rows. *sqlx.DB and
// *sqlx.Tx both satisfy it, so pooling and connection lifecycle stay with the caller.
type QueryExecutor interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}
