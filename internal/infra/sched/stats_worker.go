package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/infra/metrics"
	"telegram-subscription-gate/internal/usecase"
)

// PoolStatter reports connection pool usage; both store backends implement it.
type PoolStatter interface {
	PoolStats() (total, idle, inUse int32)
}

// StatsWorker periodically exports store pool usage and the aggregate totals as gauges.
type StatsWorker struct {
	interval time.Duration
	pool     PoolStatter
	statsUC  usecase.StatsUseCase
	log      *zerolog.Logger
}

func NewStatsWorker(interval time.Duration, pool PoolStatter, statsUC usecase.StatsUseCase, logger *zerolog.Logger) *StatsWorker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	l := logger.With().Str("component", "StatsWorker").Logger()
	return &StatsWorker{
		interval: interval,
		pool:     pool,
		statsUC:  statsUC,
		log:      &l,
	}
}

func (w *StatsWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting stats worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sample(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stats worker")
			return ctx.Err()
		case <-ticker.C:
			w.sample(ctx)
		}
	}
}

func (w *StatsWorker) sample(ctx context.Context) {
	metrics.SetDBPoolStats(w.pool.PoolStats())

	snap, err := w.statsUC.Snapshot(ctx)
	if err != nil {
		w.log.Error().Err(err).Msg("stats worker: snapshot failed")
		return
	}
	metrics.SetAggregate(snap)
}
