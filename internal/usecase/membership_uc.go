package usecase

import (
	"context"
	"errors"
	"time"

	"telegram-subscription-gate/internal/domain/model"
	"telegram-subscription-gate/internal/domain/ports/adapter"
	"telegram-subscription-gate/internal/infra/logging"
	"telegram-subscription-gate/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Compile-time checks
var (
	_ MembershipOracle = (*membershipOracle)(nil)
	_ AccessGate       = (*accessGate)(nil)
)

// MembershipOracle answers whether a user is currently subscribed to the required group.
// Any failure is reported as "not subscribed".
type MembershipOracle interface {
	Check(ctx context.Context, userID int64) bool
}

// AccessGate decides whether a gated action may run for a user.
type AccessGate interface {
	Allow(ctx context.Context, userID int64) bool
}

const defaultMembershipTimeout = 5 * time.Second

type membershipOracle struct {
	lookup  adapter.MembershipLookup
	group   string
	timeout time.Duration
	log     *zerolog.Logger
}

func NewMembershipOracle(lookup adapter.MembershipLookup, group string, timeout time.Duration, logger *zerolog.Logger) *membershipOracle {
	if timeout <= 0 {
		timeout = defaultMembershipTimeout
	}
	return &membershipOracle{lookup: lookup, group: group, timeout: timeout, log: logger}
}

func (o *membershipOracle) Check(ctx context.Context, userID int64) bool {
	defer logging.TraceDuration(o.log, "MembershipOracle.Check")()

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	status, err := o.lookup.GetChatMemberStatus(cctx, o.group, userID)
	metrics.ObserveMembershipLatency(time.Since(start).Milliseconds())
	if err == nil && cctx.Err() != nil {
		err = cctx.Err()
	}
	if err != nil {
		metrics.IncMembershipCheck("error")
		ev := o.log.Error().Err(err).Int64("tg_id", userID).Str("group", o.group)
		if errors.Is(err, context.DeadlineExceeded) {
			ev = ev.Dur("timeout", o.timeout)
		}
		ev.Msg("membership lookup failed; treating as not subscribed")
		return false
	}

	if model.MemberStatus(status).Active() {
		metrics.IncMembershipCheck("allowed")
		return true
	}
	metrics.IncMembershipCheck("denied")
	o.log.Debug().Int64("tg_id", userID).Str("status", status).Msg("membership denied")
	return false
}

type accessGate struct {
	oracle MembershipOracle
}

func NewAccessGate(oracle MembershipOracle) *accessGate {
	return &accessGate{oracle: oracle}
}

// Allow consults the oracle on every call; decisions are never cached.
func (g *accessGate) Allow(ctx context.Context, userID int64) bool {
	return g.oracle.Check(ctx, userID)
}

