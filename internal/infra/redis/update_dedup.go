package redis

import (
	"context"
	"fmt"
	"time"

	"telegram-subscription-gate/internal/domain/ports/repository"
)

var _ repository.UpdateDeduper = (*UpdateDeduper)(nil)

// UpdateDeduper marks webhook update ids as seen with SETNX. Telegram
// redelivers an update when the webhook answer is slow or lost; the marker
// makes the second delivery a no-op.
type UpdateDeduper struct {
	cli RedisClient
	ttl time.Duration
}

func NewUpdateDeduper(cli RedisClient, ttl time.Duration) *UpdateDeduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UpdateDeduper{cli: cli, ttl: ttl}
}

func UpdateKey(updateID int) string {
	return fmt.Sprintf("tg:update:%d", updateID)
}

// FirstSeen reports true the first time updateID is offered within the TTL.
func (d *UpdateDeduper) FirstSeen(ctx context.Context, updateID int) (bool, error) {
	return d.cli.SetNX(ctx, UpdateKey(updateID), 1, d.ttl)
}

func (d *UpdateDeduper) Forget(ctx context.Context, updateID int) error {
	return d.cli.Del(ctx, UpdateKey(updateID))
}
