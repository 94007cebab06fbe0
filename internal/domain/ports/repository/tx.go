package repository

import "context"

type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside a database transaction and hands the
// backend-specific handle (pgx.Tx, *sql.Tx) to fn as tx.
// fn returning an error rolls the transaction back; otherwise it is committed.
// Repositories MUST accept a nil tx and fall back to their pool.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
