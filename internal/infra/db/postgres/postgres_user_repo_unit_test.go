//go:build !integration

package postgres

import (
	"context"
	"errors"
	"testing"

	"telegram-subscription-gate/internal/domain"
	"telegram-subscription-gate/internal/domain/model"
)

func TestGetExecutor(t *testing.T) {
	if _, err := getExecutor(nil, nil); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("nil pool and nil tx: expected ErrInvalidArgument, got %v", err)
	}
	if _, err := getExecutor(nil, "not-a-tx"); !errors.Is(err, domain.ErrInvalidExecContext) {
		t.Errorf("unknown tx type: expected ErrInvalidExecContext, got %v", err)
	}
}

func TestIncrementRejectsUnknownCounter(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	_, err := repo.Increment(context.Background(), nil, 1, model.Counter(99))
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestRegisterRejectsNonPositiveID(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if _, err := repo.Register(context.Background(), nil, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestStoreErrWrapsBoth(t *testing.T) {
	cause := errors.New("connection refused")
	err := storeErr("register user", cause)
	if !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected both sentinel and cause in chain, got %v", err)
	}
}
