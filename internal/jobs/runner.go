// Package jobs runs cancellable background tasks with a single-flight guard
// per key. Finished tasks stay queryable for a retention window.
package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/staysocial/staysocial-backend/internal/metrics"
	"go.uber.org/zap"
)

var (
	ErrInFlight     = errors.New("a task for this key is already running")
	ErrTaskNotFound = errors.New("task not found")
	ErrRunnerClosed = errors.New("runner is closed")
)

// Status is the lifecycle state of a task
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Func is the unit of work. It must return promptly once ctx is done.
type Func func(ctx context.Context) (interface{}, error)

// Publisher receives task lifecycle events
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// Event is published when a task finishes
type Event struct {
	Type   string      `json:"type"`
	TaskID string      `json:"taskId"`
	Kind   string      `json:"kind"`
	Key    string      `json:"key"`
	Status Status      `json:"status"`
	Error  string      `json:"error,omitempty"`
	Result interface{} `json:"result,omitempty"`
}

type Config struct {
	Kind      string        // label used in logs, metrics and events
	Retention time.Duration // how long finished tasks stay queryable
	Channel   string        // pub/sub channel for task events; empty disables them
}

// Runner starts tasks and tracks them by id
type Runner struct {
	cfg       Config
	logger    *zap.SugaredLogger
	metrics   *metrics.Metrics
	publisher Publisher

	rootCtx context.Context
	stop    context.CancelFunc

	mu     sync.Mutex
	tasks  map[string]*Task // id -> task
	active map[string]*Task // key -> pending task
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(cfg Config, logger *zap.SugaredLogger, m *metrics.Metrics, publisher Publisher) *Runner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 10 * time.Minute
	}
	if cfg.Kind == "" {
		cfg.Kind = "task"
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		cfg:       cfg,
		logger:    logger.With("runner", cfg.Kind),
		metrics:   m,
		publisher: publisher,
		rootCtx:   ctx,
		stop:      cancel,
		tasks:     make(map[string]*Task),
		active:    make(map[string]*Task),
	}
}

// Start launches fn under key. While a task for key is pending any further
// Start for the same key fails with ErrInFlight.
func (r *Runner) Start(key string, fn Func) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRunnerClosed
	}
	r.evictLocked(time.Now())

	if existing, ok := r.active[key]; ok {
		return existing, ErrInFlight
	}

	ctx, cancel := context.WithCancel(r.rootCtx)
	task := &Task{
		id:        uuid.NewString(),
		key:       key,
		kind:      r.cfg.Kind,
		status:    StatusPending,
		createdAt: time.Now(),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	r.tasks[task.id] = task
	r.active[key] = task

	r.wg.Add(1)
	go r.run(context.WithValue(ctx, taskKey{}, task), task, fn)

	r.logger.Debugw("Task started", "task", task.id, "key", key)
	return task, nil
}

func (r *Runner) run(ctx context.Context, task *Task, fn Func) {
	defer r.wg.Done()
	defer task.cancel()

	result, err := safeCall(ctx, fn)

	// Release the key before Done closes so a waiter can start the next task
	r.mu.Lock()
	if r.active[task.key] == task {
		delete(r.active, task.key)
	}
	r.mu.Unlock()

	status := task.finish(ctx, result, err)

	duration := task.FinishedAt().Sub(task.createdAt)
	r.metrics.RecordTask(context.Background(), r.cfg.Kind, string(status), duration)

	switch status {
	case StatusFailed:
		r.logger.Warnw("Task failed", "task", task.id, "key", task.key, "error", err)
	default:
		r.logger.Debugw("Task finished", "task", task.id, "key", task.key, "status", status, "duration", duration)
	}

	r.publish(task)
}

func safeCall(ctx context.Context, fn Func) (result interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec}
		}
	}()
	return fn(ctx)
}

// PanicError reports a task that panicked
type PanicError struct {
	Value interface{}
}

func (e *PanicError) Error() string {
	return "task panicked"
}

func (r *Runner) publish(task *Task) {
	if r.publisher == nil || r.cfg.Channel == "" {
		return
	}

	view := task.View()
	event := Event{
		Type:   r.cfg.Kind + "." + string(view.Status),
		TaskID: view.ID,
		Kind:   view.Kind,
		Key:    view.Key,
		Status: view.Status,
		Error:  view.Error,
		Result: view.Result,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.publisher.Publish(ctx, r.cfg.Channel, event); err != nil {
		r.logger.Warnw("Failed to publish task event", "task", task.id, "error", err)
	}
}

// Get returns a task that is pending or still inside its retention window
func (r *Runner) Get(id string) (*Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked(time.Now())
	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// Active returns the pending task for key, if any
func (r *Runner) Active(key string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.active[key]
	return task, ok
}

// Cancel cancels the task with id. Cancelling a finished task is a no-op.
func (r *Runner) Cancel(id string) (*Task, error) {
	task, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	task.Cancel()
	return task, nil
}

// Close cancels every pending task and waits for them to return
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	r.stop()
	r.wg.Wait()
}

func (r *Runner) evictLocked(now time.Time) {
	for id, task := range r.tasks {
		finished := task.FinishedAt()
		if !finished.IsZero() && now.Sub(finished) > r.cfg.Retention {
			delete(r.tasks, id)
		}
	}
}
