//go:build !integration

package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"telegram-subscription-gate/internal/config"
	"telegram-subscription-gate/internal/domain"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("sqlite", func(t *testing.T) {
		store, err := Open(ctx, config.StoreConfig{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "bot.db")})
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			t.Fatalf("EnsureSchema: %v", err)
		}
		if created, err := store.Register(ctx, nil, 1); err != nil || !created {
			t.Fatalf("Register: created=%v err=%v", created, err)
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		if _, err := Open(ctx, config.StoreConfig{Driver: "mysql"}); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
