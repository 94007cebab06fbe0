package model

import (
	"time"

	"telegram-subscription-gate/internal/domain"
)

// User is the per-user record kept by the counter store.
// ID is the Telegram user id; counters only ever grow.
type User struct {
	ID           int64     `json:"id"`
	CounterA     int64     `json:"counter_a"`
	CounterB     int64     `json:"counter_b"`
	RegisteredAt time.Time `json:"registered_at"`
}

func NewUser(id int64) (*User, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &User{ID: id, RegisteredAt: time.Now()}, nil
}

// Counter names one of the two per-user click counters.
type Counter int

const (
	CounterA Counter = iota + 1
	CounterB
)

func (c Counter) String() string {
	switch c {
	case CounterA:
		return "a"
	case CounterB:
		return "b"
	default:
		return "unknown"
	}
}

func (c Counter) Valid() bool { return c == CounterA || c == CounterB }

// AggregateSnapshot is computed on demand and never stored.
type AggregateSnapshot struct {
	TotalUsers int64 `json:"total_users"`
	TotalA     int64 `json:"total_a"`
	TotalB     int64 `json:"total_b"`
}
