// Package dispatcher decouples the allocation pipeline from the HTTP
// request path. Work is keyed by user: each user gets a single-consumer
// queue created on first use and reaped when idle, so tasks for one user
// run strictly in enqueue order while different users proceed in parallel.
package dispatcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config tunes queue depth, per-task deadline and idle reaping.
type Config struct {
	QueueSize   int
	TaskTimeout time.Duration
	IdleTTL     time.Duration
}

// DefaultConfig returns sensible defaults for tests and local runs.
func DefaultConfig() Config {
	return Config{
		QueueSize:   32,
		TaskTimeout: 2 * time.Minute,
		IdleTTL:     5 * time.Minute,
	}
}

type task struct {
	name string
	run  func(ctx context.Context) error
}

type userQueue struct {
	ch     chan task
	closed bool
}

// Dispatcher owns the per-user queues.
type Dispatcher struct {
	cfg    Config
	logger *zap.Logger

	mu      sync.Mutex
	queues  map[uuid.UUID]*userQueue
	stopped bool

	wg sync.WaitGroup

	baseCtx    context.Context
	cancelBase context.CancelFunc
}

func New(cfg Config, logger *zap.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 32
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 2 * time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 5 * time.Minute
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		cfg:        cfg,
		logger:     logger.Named("dispatcher"),
		queues:     make(map[uuid.UUID]*userQueue),
		baseCtx:    ctx,
		cancelBase: cancel,
	}
}

// Enqueue schedules a task on the user's queue, creating the queue and its
// consumer on first use. Tasks enqueued for the same user run one at a
// time, in order. Returns an error when the dispatcher is stopped or the
// user's queue is full.
func (d *Dispatcher) Enqueue(userID uuid.UUID, name string, run func(ctx context.Context) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return fmt.Errorf("dispatcher is stopped")
	}

	q, ok := d.queues[userID]
	if !ok || q.closed {
		q = &userQueue{ch: make(chan task, d.cfg.QueueSize)}
		d.queues[userID] = q
		d.wg.Add(1)
		go d.consume(userID, q)
	}

	select {
	case q.ch <- task{name: name, run: run}:
		return nil
	default:
		return fmt.Errorf("task queue for user %s is full", userID)
	}
}

// consume drains one user's queue until it has been idle for IdleTTL, then
// unregisters itself.
func (d *Dispatcher) consume(userID uuid.UUID, q *userQueue) {
	defer d.wg.Done()

	idle := time.NewTimer(d.cfg.IdleTTL)
	defer idle.Stop()

	for {
		select {
		case t := <-q.ch:
			d.runTask(userID, t)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(d.cfg.IdleTTL)

		case <-idle.C:
			d.mu.Lock()
			if len(q.ch) > 0 {
				// A task slipped in while the timer fired; keep going.
				d.mu.Unlock()
				idle.Reset(d.cfg.IdleTTL)
				continue
			}
			q.closed = true
			delete(d.queues, userID)
			d.mu.Unlock()
			return

		case <-d.baseCtx.Done():
			// Drain whatever is already queued, then exit.
			for {
				select {
				case t := <-q.ch:
					d.runTask(userID, t)
				default:
					d.mu.Lock()
					q.closed = true
					delete(d.queues, userID)
					d.mu.Unlock()
					return
				}
			}
		}
	}
}

// runTask executes one task with its own deadline, recovering panics.
// Failures are logged and never retried; side effects that already
// committed stay committed.
func (d *Dispatcher) runTask(userID uuid.UUID, t task) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.TaskTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("task panicked",
				zap.String("task", t.name),
				zap.String("user_id", userID.String()),
				zap.Any("panic", r),
			)
		}
	}()

	if err := t.run(ctx); err != nil {
		d.logger.Error("task failed",
			zap.String("task", t.name),
			zap.String("user_id", userID.String()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return
	}
	d.logger.Debug("task completed",
		zap.String("task", t.name),
		zap.String("user_id", userID.String()),
		zap.Duration("duration", time.Since(start)),
	)
}

// Start is a lifecycle no-op; queues spin up lazily on first Enqueue.
func (d *Dispatcher) Start(_ context.Context) error {
	d.logger.Info("dispatcher started",
		zap.Int("queue_size", d.cfg.QueueSize),
		zap.Duration("task_timeout", d.cfg.TaskTimeout),
		zap.Duration("idle_ttl", d.cfg.IdleTTL),
	)
	return nil
}

// Stop refuses new work, lets queued tasks drain and waits for consumers,
// bounded by ctx.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
	d.cancelBase()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.logger.Info("dispatcher stopped")
		return nil
	case <-ctx.Done():
		d.logger.Warn("dispatcher shutdown timeout")
		return ctx.Err()
	}
}

// QueueDepth reports the number of pending tasks for a user, for tests and
// observability.
func (d *Dispatcher) QueueDepth(userID uuid.UUID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if q, ok := d.queues[userID]; ok {
		return len(q.ch)
	}
	return 0
}
