// Package workerpool bounds the goroutines used for best-effort background
// work such as cloud snapshot pushes.
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrPoolFull is returned when the task queue is full.
	ErrPoolFull = errors.New("worker pool queue is full")
	// ErrPoolClosed is returned after Shutdown.
	ErrPoolClosed = errors.New("worker pool is closed")
)

// Config for the pool.
type Config struct {
	// MaxWorkers is the number of concurrent workers, default 4.
	MaxWorkers int
	// QueueSize is the pending task buffer, default 64.
	QueueSize int
	// WarningPercent logs a warning when the queue passes this fill ratio,
	// default 0.8.
	WarningPercent float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		MaxWorkers:     4,
		QueueSize:      64,
		WarningPercent: 0.8,
	}
}

type task struct {
	ctx context.Context
	fn  func(context.Context)
}

// Pool runs submitted tasks on a fixed set of workers.
type Pool struct {
	config Config
	logger *zap.Logger

	taskCh   chan task
	workerWg sync.WaitGroup

	pending atomic.Int64

	mu     sync.RWMutex
	closed bool
}

// New creates and starts a Pool. A nil cfg uses DefaultConfig; a nil logger
// is replaced by zap.NewNop().
func New(cfg *Config, logger *zap.Logger) *Pool {
	if cfg == nil {
		defaultCfg := DefaultConfig()
		cfg = &defaultCfg
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.WarningPercent <= 0 || cfg.WarningPercent > 1 {
		cfg.WarningPercent = 0.8
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: *cfg,
		logger: logger,
		taskCh: make(chan task, cfg.QueueSize),
	}

	for i := 0; i < cfg.MaxWorkers; i++ {
		p.workerWg.Add(1)
		go p.worker()
	}

	logger.Info("worker pool started",
		zap.Int("maxWorkers", cfg.MaxWorkers),
		zap.Int("queueSize", cfg.QueueSize))

	return p
}

func (p *Pool) worker() {
	defer p.workerWg.Done()
	for t := range p.taskCh {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error("worker pool task panic",
						zap.Any("panic", r),
						zap.Stack("stack"))
				}
			}()
			t.fn(t.ctx)
		}()
		p.pending.Add(-1)
	}
}

// Submit enqueues fn without blocking. It returns ErrPoolFull when the
// queue is saturated so callers can decide whether the work is droppable.
func (p *Pool) Submit(ctx context.Context, fn func(context.Context)) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.taskCh <- task{ctx: ctx, fn: fn}:
		n := p.pending.Add(1)
		if float64(n) >= float64(p.config.QueueSize)*p.config.WarningPercent {
			p.logger.Warn("worker pool queue filling up",
				zap.Int64("pending", n),
				zap.Int("queueSize", p.config.QueueSize))
		}
		return nil
	default:
		return ErrPoolFull
	}
}

// Shutdown stops intake and waits for in-flight tasks, up to the context
// deadline.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.taskCh)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.workerWg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports queued-but-unfinished tasks. Used by tests and shutdown
// logging.
func (p *Pool) Pending() int64 {
	return p.pending.Load()
}

// WaitIdle blocks until the queue drains or the timeout elapses. Intended
// for tests that need the best-effort work observed.
func (p *Pool) WaitIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if p.pending.Load() == 0 {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return p.pending.Load() == 0
}
