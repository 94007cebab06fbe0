package repository

import (
	"context"

	"telegram-subscription-gate/internal/domain/model"
)

// -----------------------------
// Users / counters
// -----------------------------

// UserRepository is the counter store. Every call round-trips to storage.
type UserRepository interface {
	// EnsureSchema creates the users table if it does not exist yet.
	EnsureSchema(ctx context.Context) error
	// Register inserts a zeroed record for userID unless one exists.
	// created reports whether a new row was written.
	Register(ctx context.Context, tx Tx, userID int64) (created bool, err error)
	// Increment atomically adds one to the named counter. A missing record
	// is left alone and reported with applied == false.
	Increment(ctx context.Context, tx Tx, userID int64, c model.Counter) (applied bool, err error)
	Aggregate(ctx context.Context, tx Tx) (*model.AggregateSnapshot, error)
	FindByID(ctx context.Context, tx Tx, userID int64) (*model.User, error)

	PoolStats() (total, idle, inUse int32)
	Close()
}
