package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
  user_id       INTEGER PRIMARY KEY,
  counter_a     INTEGER NOT NULL DEFAULT 0 CHECK (counter_a >= 0),
  counter_b     INTEGER NOT NULL DEFAULT 0 CHECK (counter_b >= 0),
  registered_at INTEGER NOT NULL DEFAULT (strftime('%s', 'now'))
);`

const (
	incrementASQL = `UPDATE users SET counter_a = counter_a + 1 WHERE user_id = ?;`
	incrementBSQL = `UPDATE users SET counter_b = counter_b + 1 WHERE user_id = ?;`
)

// UserRepo is the SQLite counter store.
type UserRepo struct {
	db *sql.DB
	tm repository.TransactionManager
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db, tm: NewTxManager(db)}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func (r *UserRepo) EnsureSchema(ctx context.Context) error {
	err := r.tm.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ex, err := getExecutor(r.db, tx)
		if err != nil {
			return err
		}
		_, err = ex.ExecContext(ctx, schemaSQL)
		return err
	})
	if err != nil {
		return storeErr("ensure schema", err)
	}
	return nil
}

func (r *UserRepo) Register(ctx context.Context, tx repository.Tx, userID int64) (bool, error) {
	if userID <= 0 {
		return false, domain.ErrInvalidArgument
	}
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return false, err
	}
	res, err := ex.ExecContext(ctx, `INSERT INTO users (user_id) VALUES (?) ON CONFLICT (user_id) DO NOTHING;`, userID)
	if err != nil {
		return false, storeErr("register user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("register user", err)
	}
	return n == 1, nil
}

func (r *UserRepo) Increment(ctx context.Context, tx repository.Tx, userID int64, c model.Counter) (bool, error) {
	var q string
	switch c {
	case model.CounterA:
		q = incrementASQL
	case model.CounterB:
		q = incrementBSQL
	default:
		return false, fmt.Errorf("%w: counter %d", domain.ErrInvalidArgument, c)
	}
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return false, err
	}
	res, err := ex.ExecContext(ctx, q, userID)
	if err != nil {
		return false, storeErr("increment counter "+c.String(), err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storeErr("increment counter "+c.String(), err)
	}
	return n == 1, nil
}

func (r *UserRepo) Aggregate(ctx context.Context, tx repository.Tx) (*model.AggregateSnapshot, error) {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT COUNT(*), COALESCE(SUM(counter_a), 0), COALESCE(SUM(counter_b), 0) FROM users;`
	var s model.AggregateSnapshot
	if err := ex.QueryRowContext(ctx, q).Scan(&s.TotalUsers, &s.TotalA, &s.TotalB); err != nil {
		return nil, storeErr("aggregate", err)
	}
	return &s, nil
}

func (r *UserRepo) FindByID(ctx context.Context, tx repository.Tx, userID int64) (*model.User, error) {
	ex, err := getExecutor(r.db, tx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT user_id, counter_a, counter_b, registered_at FROM users WHERE user_id = ?;`
	var (
		u  model.User
		at int64
	)
	if err := ex.QueryRowContext(ctx, q, userID).Scan(&u.ID, &u.CounterA, &u.CounterB, &at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, storeErr("find user", err)
	}
	u.RegisteredAt = time.Unix(at, 0).UTC()
	return &u, nil
}

func (r *UserRepo) PoolStats() (total, idle, inUse int32) {
	st := r.db.Stats()
	return int32(st.OpenConnections), int32(st.Idle), int32(st.InUse)
}

func (r *UserRepo) Close() { _ = r.db.Close() }
