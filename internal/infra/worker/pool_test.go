//go:build !integration

package worker

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestPool(workers int, timeout time.Duration) *Pool {
	logger := zerolog.New(io.Discard)
	return NewPool(workers, timeout, &logger)
}

func TestPool_StopDrainsQueuedTasks(t *testing.T) {
	p := newTestPool(2, time.Second)
	p.Start(context.Background())

	var done int32
	for i := 0; i < 8; i++ {
		if err := p.Submit(func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&done, 1)
			return nil
		}); err != nil {
			t.Fatalf("Submit %d: %v", i, err)
		}
	}
	p.Stop()

	if got := atomic.LoadInt32(&done); got != 8 {
		t.Fatalf("expected all 8 queued tasks to run, got %d", got)
	}
	if err := p.Submit(func(ctx context.Context) error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Fatalf("expected ErrPoolClosed after Stop, got %v", err)
	}
	p.Stop()
}

func TestPool_SubmitRejections(t *testing.T) {
	t.Run("nil task", func(t *testing.T) {
		p := newTestPool(1, 0)
		if err := p.Submit(nil); !errors.Is(err, ErrNilTask) {
			t.Fatalf("expected ErrNilTask, got %v", err)
		}
	})

	t.Run("full queue", func(t *testing.T) {
		p := newTestPool(1, 0) // not started: nothing consumes the queue
		noop := func(ctx context.Context) error { return nil }
		for i := 0; i < cap(p.jobs); i++ {
			if err := p.Submit(noop); err != nil {
				t.Fatalf("Submit %d: %v", i, err)
			}
		}
		if err := p.Submit(noop); !errors.Is(err, ErrQueueFull) {
			t.Fatalf("expected ErrQueueFull, got %v", err)
		}
	})
}

func TestPool_RunAppliesTimeoutAndRecovers(t *testing.T) {
	p := newTestPool(1, 20*time.Millisecond)

	var sawDeadline bool
	p.Run(context.Background(), 0, func(ctx context.Context) error {
		_, sawDeadline = ctx.Deadline()
		<-ctx.Done()
		return ctx.Err()
	})
	if !sawDeadline {
		t.Fatalf("task context should carry the pool timeout")
	}

	// must not propagate
	p.Run(context.Background(), 0, func(ctx context.Context) error { panic("boom") })
}

func TestPool_StartContextCancelDoesNotAbortTasks(t *testing.T) {
	p := newTestPool(1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	cancel()

	var ctxErr atomic.Value
	if err := p.Submit(func(ctx context.Context) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	p.Stop()

	if ok, _ := ctxErr.Load().(bool); !ok {
		t.Fatalf("task saw a cancelled context")
	}
}
