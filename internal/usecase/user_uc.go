package usecase

import (
	"context"
	"time"

	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/repository"
	"telegram-subscription-gate/internal/infra/logging"
	"telegram-subscription-gate/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes the per-user operations used by the router and the admin API.
type UserUseCase interface {
	Register(ctx context.Context, userID int64) (created bool, err error)
	RecordClick(ctx context.Context, userID int64, c model.Counter) (applied bool, err error)
	Get(ctx context.Context, userID int64) (*model.User, error)
}

const defaultStoreTimeout = 10 * time.Second

type userUC struct {
	users        repository.UserRepository
	storeTimeout time.Duration
	log          *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, storeTimeout time.Duration, logger *zerolog.Logger) *userUC {
	if storeTimeout <= 0 {
		storeTimeout = defaultStoreTimeout
	}
	return &userUC{
		users:        users,
		storeTimeout: storeTimeout,
		log:          logger,
	}
}

func (u *userUC) Register(ctx context.Context, userID int64) (bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.Register")()

	created, err := u.users.Register(ctx, repository.NoTX, userID)
	if err != nil {
		u.log.Error().Err(err).Int64("tg_id", userID).Msg("register user failed")
		return false, err
	}
	if created {
		metrics.IncUsersRegistered()
		u.log.Info().Int64("tg_id", userID).Msg("new user registered")
	}
	return created, nil
}

// RecordClick bumps counter c for userID. The write is detached from the
// caller's cancellation so a disconnecting client cannot abort it halfway.
func (u *userUC) RecordClick(ctx context.Context, userID int64, c model.Counter) (bool, error) {
	defer logging.TraceDuration(u.log, "UserUC.RecordClick")()

	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.storeTimeout)
	defer cancel()

	applied, err := u.users.Increment(wctx, repository.NoTX, userID, c)
	if err != nil {
		u.log.Error().Err(err).Int64("tg_id", userID).Str("counter", c.String()).Msg("increment failed")
		return false, err
	}
	metrics.IncCounter(c.String(), applied)
	if !applied {
		u.log.Warn().Int64("tg_id", userID).Str("counter", c.String()).Msg("increment skipped: user not registered")
	}
	return applied, nil
}

func (u *userUC) Get(ctx context.Context, userID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	return u.users.FindByID(ctx, repository.NoTX, userID)
}
