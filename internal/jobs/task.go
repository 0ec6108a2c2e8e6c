package jobs

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Task is a handle on a background unit of work
type Task struct {
	id        string
	key       string
	kind      string
	createdAt time.Time
	cancel    context.CancelFunc
	done      chan struct{}

	mu         sync.RWMutex
	committed  bool
	status     Status
	result     interface{}
	err        error
	finishedAt time.Time
}

// View is the JSON shape of a task
type View struct {
	ID         string      `json:"id"`
	Kind       string      `json:"kind"`
	Key        string      `json:"key"`
	Status     Status      `json:"status"`
	Result     interface{} `json:"result,omitempty"`
	Error      string      `json:"error,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	FinishedAt *time.Time  `json:"finishedAt,omitempty"`
}

func (t *Task) ID() string   { return t.id }
func (t *Task) Key() string  { return t.key }
func (t *Task) Kind() string { return t.kind }

// Cancel asks the task to stop. A task cancelled before it commits reports
// StatusCancelled and its result is discarded. Once committed, Cancel is a
// no-op and the task completes with its result.
func (t *Task) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.committed {
		return
	}
	t.cancel()
}

type taskKey struct{}

// Commit marks the point after which the task's side effects stand. It fails
// with the context error if the task was cancelled first. Work running
// outside a Runner only gets the context check.
func Commit(ctx context.Context) error {
	t, ok := ctx.Value(taskKey{}).(*Task)
	if !ok {
		return ctx.Err()
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	t.committed = true
	return nil
}

// Done is closed once the task has reached a final status
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx ends
func (t *Task) Wait(ctx context.Context) (interface{}, error) {
	select {
	case <-t.done:
		return t.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *Task) Status() Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Result returns the outcome of a finished task. A pending task yields nil, nil.
func (t *Task) Result() (interface{}, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.result, t.err
}

func (t *Task) FinishedAt() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.finishedAt
}

func (t *Task) View() View {
	t.mu.RLock()
	defer t.mu.RUnlock()

	v := View{
		ID:        t.id,
		Kind:      t.kind,
		Key:       t.key,
		Status:    t.status,
		Result:    t.result,
		CreatedAt: t.createdAt,
	}
	if t.err != nil {
		v.Error = t.err.Error()
	}
	if !t.finishedAt.IsZero() {
		finished := t.finishedAt
		v.FinishedAt = &finished
	}
	return v
}

// finish records the outcome exactly once. Until the task commits,
// cancellation wins over whatever fn returned.
func (t *Task) finish(ctx context.Context, result interface{}, err error) Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case !t.committed && ctx.Err() != nil:
		t.status = StatusCancelled
		t.result = nil
		t.err = context.Canceled
	case err != nil && errors.Is(err, context.Canceled):
		t.status = StatusCancelled
		t.err = err
	case err != nil:
		t.status = StatusFailed
		t.err = err
	default:
		t.status = StatusCompleted
		t.result = result
	}
	t.finishedAt = time.Now()
	close(t.done)
	return t.status
}
