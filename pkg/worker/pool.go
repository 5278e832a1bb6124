// Package worker runs short background tasks on a bounded pool and arms
// cancellable delayed tasks that run on it.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// DefaultSize is the default number of concurrently running tasks.
const DefaultSize = 8

// Task is a unit of work. ctx is cancelled when the pool closes.
type Task func(ctx context.Context)

// Timer is a pending delayed task.
type Timer interface {
	// Stop cancels the task. It reports whether the task was still pending.
	Stop() bool
}

// Executor is the scheduling surface used by connection managers.
type Executor interface {
	Submit(task Task) bool
	AfterFunc(d time.Duration, task Task) Timer
}

// Pool runs tasks with bounded concurrency. Submit never blocks: tasks wait
// for a slot on their own goroutine.
type Pool struct {
	sem    *semaphore.Weighted
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool running at most size tasks at once. A size below 1
// uses DefaultSize. A nil logger discards.
func NewPool(size int, logger *slog.Logger) *Pool {
	if size < 1 {
		size = DefaultSize
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Submit queues task. It reports false if the pool is closed.
func (p *Pool) Submit(task Task) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		if err := p.sem.Acquire(p.ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("worker task panicked", "panic", r)
			}
		}()
		task(p.ctx)
	}()
	return true
}

// AfterFunc runs task on the pool after d.
func (p *Pool) AfterFunc(d time.Duration, task Task) Timer {
	return time.AfterFunc(d, func() {
		if !p.Submit(task) {
			p.logger.Debug("delayed task dropped, pool closed")
		}
	})
}

// Close stops accepting tasks, cancels running ones and waits for them.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

var _ Executor = (*Pool)(nil)
