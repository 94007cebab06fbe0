package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
  user_id       BIGINT PRIMARY KEY,
  counter_a     BIGINT NOT NULL DEFAULT 0 CHECK (counter_a >= 0),
  counter_b     BIGINT NOT NULL DEFAULT 0 CHECK (counter_b >= 0),
  registered_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// One fixed statement per counter; the column is never built from input.
const (
	incrementASQL = `UPDATE users SET counter_a = counter_a + 1 WHERE user_id = $1;`
	incrementBSQL = `UPDATE users SET counter_b = counter_b + 1 WHERE user_id = $1;`
)

type PostgresUserRepo struct {
	pool *pgxpool.Pool
	tm   repository.TransactionManager
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool, tm: NewTxManager(pool)}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func (r *PostgresUserRepo) EnsureSchema(ctx context.Context) error {
	err := r.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ex, err := getExecutor(r.pool, tx)
		if err != nil {
			return err
		}
		_, err = ex.Exec(ctx, schemaSQL)
		return err
	})
	if err != nil {
		return storeErr("ensure schema", err)
	}
	return nil
}

func (r *PostgresUserRepo) Register(ctx context.Context, tx repository.Tx, userID int64) (bool, error) {
	if userID <= 0 {
		return false, domain.ErrInvalidArgument
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, `INSERT INTO users (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING;`, userID)
	if err != nil {
		return false, storeErr("register user", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresUserRepo) Increment(ctx context.Context, tx repository.Tx, userID int64, c model.Counter) (bool, error) {
	var q string
	switch c {
	case model.CounterA:
		q = incrementASQL
	case model.CounterB:
		q = incrementBSQL
	default:
		return false, fmt.Errorf("%w: counter %d", domain.ErrInvalidArgument, c)
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	tag, err := ex.Exec(ctx, q, userID)
	if err != nil {
		return false, storeErr("increment counter "+c.String(), err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PostgresUserRepo) Aggregate(ctx context.Context, tx repository.Tx) (*model.AggregateSnapshot, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT COUNT(*), COALESCE(SUM(counter_a), 0), COALESCE(SUM(counter_b), 0) FROM users;`
	var s model.AggregateSnapshot
	if err := ex.QueryRow(ctx, q).Scan(&s.TotalUsers, &s.TotalA, &s.TotalB); err != nil {
		return nil, storeErr("aggregate", err)
	}
	return &s, nil
}

func (r *PostgresUserRepo) FindByID(ctx context.Context, tx repository.Tx, userID int64) (*model.User, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT user_id, counter_a, counter_b, registered_at FROM users WHERE user_id = $1;`
	var (
		u  model.User
		at time.Time
	)
	if err := ex.QueryRow(ctx, q, userID).Scan(&u.ID, &u.CounterA, &u.CounterB, &at); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("find user", err)
	}
	u.RegisteredAt = at
	return &u, nil
}

func (r *PostgresUserRepo) PoolStats() (total, idle, inUse int32) {
	st := r.pool.Stat()
	return st.TotalConns(), st.IdleConns(), st.AcquiredConns()
}

func (r *PostgresUserRepo) Close() { r.pool.Close() }
