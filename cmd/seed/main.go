package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"telegram-subscription-gate/internal/config"
	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/infra/db"
	"telegram-subscription-gate/internal/usecase"
)

// seed fills a store with predictable users and clicks for manual testing of /admin.
func main() {
	driver := pflag.String("driver", "sqlite", "store driver: sqlite | postgres")
	dsn := pflag.String("dsn", "bot_database.db", "sqlite file or postgres url (DATABASE_URL overrides)")
	users := pflag.Int64Slice("users", []int64{1001, 1002, 1003}, "telegram user ids to register")
	clicksA := pflag.Int("clicks-a", 1, "clicks on action A per user")
	clicksB := pflag.Int("clicks-b", 2, "clicks on action B per user")
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.StoreConfig{Driver: *driver, DSN: *dsn, MaxConns: 4}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DSN = v
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.Open(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("open store")
	}
	defer store.Close()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ensure schema")
	}

	userUC := usecase.NewUserUseCase(store, 0, &logger)
	for _, id := range *users {
		if _, err := userUC.Register(ctx, id); err != nil {
			logger.Fatal().Err(err).Int64("tg_id", id).Msg("register")
		}
		for i := 0; i < *clicksA; i++ {
			if _, err := userUC.RecordClick(ctx, id, model.CounterA); err != nil {
				logger.Fatal().Err(err).Int64("tg_id", id).Msg("click a")
			}
		}
		for i := 0; i < *clicksB; i++ {
			if _, err := userUC.RecordClick(ctx, id, model.CounterB); err != nil {
				logger.Fatal().Err(err).Int64("tg_id", id).Msg("click b")
			}
		}
	}

	snap, err := usecase.NewStatsUseCase(store, &logger).Snapshot(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("snapshot")
	}
	fmt.Printf("seeded: users=%d a=%d b=%d\n", snap.TotalUsers, snap.TotalA, snap.TotalB)
}
