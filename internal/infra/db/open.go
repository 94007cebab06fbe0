// Package db selects the counter store backend.
package db

import (
	"context"
	"fmt"

	"telegram-subscription-gate/internal/config"
	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/ports/repository"
	pg "telegram-subscription-gate/internal/infra/db/postgres"
	"telegram-subscription-gate/internal/infra/db/sqlite"
)

// Open returns the counter store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (repository.UserRepository, error) {
	switch cfg.Driver {
	case "postgres":
		pool, err := pg.NewPgxPool(ctx, cfg.DSN, cfg.MaxConns)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return pg.NewPostgresUserRepo(pool), nil
	case "sqlite", "":
		db, err := sqlite.Open(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return sqlite.NewUserRepo(db), nil
	default:
		return nil, fmt.Errorf("%w: store.driver %q", domain.ErrInvalidArgument, cfg.Driver)
	}
}
