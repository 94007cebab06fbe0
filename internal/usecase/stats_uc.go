package usecase

import (
	"context"

	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/repository"
	"telegram-subscription-gate/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Snapshot(ctx context.Context) (*model.AggregateSnapshot, error)
}

type statsUC struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, log: logger}
}

// Snapshot is computed from storage on every call.
func (s *statsUC) Snapshot(ctx context.Context) (*model.AggregateSnapshot, error) {
	defer logging.TraceDuration(s.log, "StatsUC.Snapshot")()

	snap, err := s.users.Aggregate(ctx, repository.NoTX)
	if err != nil {
		s.log.Error().Err(err).Msg("aggregate failed")
		return nil, err
	}
	return snap, nil
}
