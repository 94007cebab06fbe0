//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/adapter"
	"telegram-subscription-gate/internal/domain/ports/repository"
)

// -----------------------------
// Repositories
// -----------------------------

// MockUserRepo keeps users in memory; set a Func field to override one call.
type MockUserRepo struct {
	mu    sync.Mutex
	users map[int64]*model.User

	RegisterFunc  func(ctx context.Context, tx repository.Tx, userID int64) (bool, error)
	IncrementFunc func(ctx context.Context, tx repository.Tx, userID int64, c model.Counter) (bool, error)
	AggregateFunc func(ctx context.Context, tx repository.Tx) (*model.AggregateSnapshot, error)

	AggregateCalls int
	IncrementCalls []CtxState
}

// CtxState is what a repository call saw of its context while it ran.
type CtxState struct {
	Err         error
	HasDeadline bool
}

var _ repository.UserRepository = (*MockUserRepo)(nil)

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{users: make(map[int64]*model.User)}
}

func (m *MockUserRepo) EnsureSchema(ctx context.Context) error { return nil }

func (m *MockUserRepo) Register(ctx context.Context, tx repository.Tx, userID int64) (bool, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, tx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; ok {
		return false, nil
	}
	u, err := model.NewUser(userID)
	if err != nil {
		return false, err
	}
	m.users[userID] = u
	return true, nil
}

func (m *MockUserRepo) Increment(ctx context.Context, tx repository.Tx, userID int64, c model.Counter) (bool, error) {
	m.mu.Lock()
	_, hasDeadline := ctx.Deadline()
	m.IncrementCalls = append(m.IncrementCalls, CtxState{Err: ctx.Err(), HasDeadline: hasDeadline})
	m.mu.Unlock()
	if m.IncrementFunc != nil {
		return m.IncrementFunc(ctx, tx, userID, c)
	}
	if !c.Valid() {
		return false, domain.ErrInvalidArgument
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return false, nil
	}
	if c == model.CounterA {
		u.CounterA++
	} else {
		u.CounterB++
	}
	return true, nil
}

func (m *MockUserRepo) Aggregate(ctx context.Context, tx repository.Tx) (*model.AggregateSnapshot, error) {
	m.mu.Lock()
	m.AggregateCalls++
	m.mu.Unlock()
	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, tx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := &model.AggregateSnapshot{TotalUsers: int64(len(m.users))}
	for _, u := range m.users {
		snap.TotalA += u.CounterA
		snap.TotalB += u.CounterB
	}
	return snap, nil
}

func (m *MockUserRepo) FindByID(ctx context.Context, tx repository.Tx, userID int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserRepo) PoolStats() (int32, int32, int32) { return 1, 1, 0 }

func (m *MockUserRepo) Close() {}

// -----------------------------
// Adapters
// -----------------------------

type MockMembershipLookup struct {
	mu    sync.Mutex
	Calls int

	GetChatMemberStatusFunc func(ctx context.Context, group string, userID int64) (string, error)
}

var _ adapter.MembershipLookup = (*MockMembershipLookup)(nil)

func (m *MockMembershipLookup) GetChatMemberStatus(ctx context.Context, group string, userID int64) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	if m.GetChatMemberStatusFunc != nil {
		return m.GetChatMemberStatusFunc(ctx, group, userID)
	}
	return string(model.StatusMember), nil
}

// -----------------------------
// Helpers
// -----------------------------

func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}
