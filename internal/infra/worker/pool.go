// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"telegram-subscription-gate/internal/infra/metrics"
)

var (
	ErrNilTask    = errors.New("nil task")
	ErrQueueFull  = errors.New("worker queue full")
	ErrPoolClosed = errors.New("worker pool stopped")
)

type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed set of goroutines.
// Each task gets its own timeout derived from the context passed to Start.
type Pool struct {
	wg      sync.WaitGroup
	mu      sync.RWMutex
	jobs    chan Task
	closed  bool
	n       int
	timeout time.Duration
	log     *zerolog.Logger
}

func NewPool(workers int, taskTimeout time.Duration, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{
		jobs:    make(chan Task, workers*4),
		n:       workers,
		timeout: taskTimeout,
		log:     logger,
	}
}

// Start launches the workers. Cancelling ctx does not abort queued tasks;
// use Stop to drain them.
func (p *Pool) Start(ctx context.Context) {
	base := context.WithoutCancel(ctx)
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for task := range p.jobs {
				metrics.SetWorkerQueueDepth(len(p.jobs))
				p.Run(base, id, task)
			}
		}(i)
	}
	p.log.Info().Int("workers", p.n).Dur("task_timeout", p.timeout).Msg("worker pool started")
}

// Run executes task on the calling goroutine with the pool's timeout and
// panic recovery. Workers use it; so do callers falling back to inline handling.
func (p *Pool) Run(ctx context.Context, id int, task Task) {
	tctx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		tctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			metrics.IncWorkerTask("failed")
			p.log.Error().Int("worker", id).Interface("panic", rec).Msg("task panicked")
		}
	}()

	if err := task(tctx); err != nil {
		metrics.IncWorkerTask("failed")
		p.log.Error().Err(err).Int("worker", id).Msg("task error")
		return
	}
	metrics.IncWorkerTask("completed")
}

// Stop refuses new tasks, lets the workers finish everything already queued and waits for them.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Info().Msg("worker pool drained")
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return ErrNilTask
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.jobs <- task:
		metrics.SetWorkerQueueDepth(len(p.jobs))
		return nil
	default:
		metrics.IncWorkerTask("rejected")
		return ErrQueueFull
	}
}
