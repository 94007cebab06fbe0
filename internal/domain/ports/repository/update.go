package repository

import "context"

// UpdateDeduper remembers webhook update ids so a redelivered update is
// processed at most once.
type UpdateDeduper interface {
	FirstSeen(ctx context.Context, updateID int) (bool, error)
	// Forget drops the marker so a redelivery of updateID is processed again.
	Forget(ctx context.Context, updateID int) error
}
