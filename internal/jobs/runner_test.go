package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct {
	mock.Mock
	mu     sync.Mutex
	events []Event
}

func (m *mockPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	m.mu.Lock()
	m.events = append(m.events, message.(Event))
	m.mu.Unlock()
	args := m.Called(channel)
	return args.Error(0)
}

func (m *mockPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

func newTestRunner(t *testing.T, cfg Config, pub Publisher) *Runner {
	t.Helper()
	r := NewRunner(cfg, nil, nil, pub)
	t.Cleanup(r.Close)
	return r
}

func waitFor(t *testing.T, task *Task) (interface{}, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	select {
	case <-task.Done():
	case <-ctx.Done():
		t.Fatalf("task %s did not finish", task.ID())
	}
	return task.Wait(ctx)
}

func TestRunnerCompletesTask(t *testing.T) {
	r := newTestRunner(t, Config{Kind: "generate"}, nil)

	task, err := r.Start("session-1", func(ctx context.Context) (interface{}, error) {
		return "caption", nil
	})
	require.NoError(t, err)
	assert.NotEmpty(t, task.ID())
	assert.Equal(t, "generate", task.Kind())

	result, err := waitFor(t, task)
	require.NoError(t, err)
	assert.Equal(t, "caption", result)
	assert.Equal(t, StatusCompleted, task.Status())

	got, err := r.Get(task.ID())
	require.NoError(t, err)
	assert.Same(t, task, got)

	view := task.View()
	assert.Equal(t, StatusCompleted, view.Status)
	assert.NotNil(t, view.FinishedAt)
}

func TestRunnerRejectsSecondStartWhilePending(t *testing.T) {
	r := newTestRunner(t, Config{}, nil)
	release := make(chan struct{})

	first, err := r.Start("session-1", func(ctx context.Context) (interface{}, error) {
		<-release
		return 1, nil
	})
	require.NoError(t, err)

	again, err := r.Start("session-1", func(ctx context.Context) (interface{}, error) {
		return 2, nil
	})
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Same(t, first, again)

	// Other keys are independent
	other, err := r.Start("session-2", func(ctx context.Context) (interface{}, error) {
		return 3, nil
	})
	require.NoError(t, err)
	_, _ = waitFor(t, other)

	active, ok := r.Active("session-1")
	assert.True(t, ok)
	assert.Same(t, first, active)

	close(release)
	_, _ = waitFor(t, first)

	_, ok = r.Active("session-1")
	assert.False(t, ok)

	next, err := r.Start("session-1", func(ctx context.Context) (interface{}, error) {
		return 4, nil
	})
	require.NoError(t, err)
	result, err := waitFor(t, next)
	require.NoError(t, err)
	assert.Equal(t, 4, result)
}

func TestRunnerCancelDiscardsResult(t *testing.T) {
	r := newTestRunner(t, Config{}, nil)

	task, err := r.Start("session-1", func(ctx context.Context) (interface{}, error) {
		select {
		case <-time.After(5 * time.Second):
			return "late", nil
		case <-ctx.Done():
			return "partial", nil
		}
	})
	require.NoError(t, err)

	_, err = r.Cancel(task.ID())
	require.NoError(t, err)

	result, err := waitFor(t, task)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, result)
	assert.Equal(t, StatusCancelled, task.Status())

	// Cancelling again is harmless
	task.Cancel()
	assert.Equal(t, StatusCancelled, task.Status())
}

func TestRunnerCancelAfterCommitKeepsResult(t *testing.T) {
	r := newTestRunner(t, Config{}, nil)
	committed := make(chan struct{})
	proceed := make(chan struct{})

	task, err := r.Start("session-1", func(ctx context.Context) (interface{}, error) {
		if err := Commit(ctx); err != nil {
			return nil, err
		}
		close(committed)
		<-proceed
		return "saved", nil
	})
	require.NoError(t, err)

	<-committed
	_, err = r.Cancel(task.ID())
	require.NoError(t, err)
	close(proceed)

	result, err := waitFor(t, task)
	require.NoError(t, err)
	assert.Equal(t, "saved", result)
	assert.Equal(t, StatusCompleted, task.Status())
}

func TestRunnerCommitFailsAfterCancel(t *testing.T) {
	r := newTestRunner(t, Config{}, nil)
	started := make(chan struct{})
	commitErr := make(chan error, 1)

	task, err := r.Start("session-1", func(ctx context.Context) (interface{}, error) {
		close(started)
		<-ctx.Done()
		err := Commit(ctx)
		commitErr <- err
		return nil, err
	})
	require.NoError(t, err)

	<-started
	_, err = r.Cancel(task.ID())
	require.NoError(t, err)

	_, err = waitFor(t, task)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, <-commitErr, context.Canceled)
	assert.Equal(t, StatusCancelled, task.Status())
}

func TestRunnerRecordsFailureAndPanic(t *testing.T) {
	r := newTestRunner(t, Config{}, nil)
	boom := errors.New("boom")

	failed, err := r.Start("a", func(ctx context.Context) (interface{}, error) {
		return nil, boom
	})
	require.NoError(t, err)
	_, err = waitFor(t, failed)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusFailed, failed.Status())

	panicked, err := r.Start("b", func(ctx context.Context) (interface{}, error) {
		panic("kaboom")
	})
	require.NoError(t, err)
	_, err = waitFor(t, panicked)
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "kaboom", panicErr.Value)
}

func TestRunnerEvictsAfterRetention(t *testing.T) {
	r := newTestRunner(t, Config{Retention: 10 * time.Millisecond}, nil)

	task, err := r.Start("k", func(ctx context.Context) (interface{}, error) { return nil, nil })
	require.NoError(t, err)
	_, _ = waitFor(t, task)

	time.Sleep(30 * time.Millisecond)
	_, err = r.Get(task.ID())
	assert.ErrorIs(t, err, ErrTaskNotFound)

	_, err = r.Cancel("missing")
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestRunnerPublishesFinishEvents(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("Publish", "ssp:events:tasks").Return(nil)

	r := newTestRunner(t, Config{Kind: "upload", Channel: "ssp:events:tasks"}, pub)

	task, err := r.Start("k", func(ctx context.Context) (interface{}, error) { return "ok", nil })
	require.NoError(t, err)
	_, _ = waitFor(t, task)

	require.Eventually(t, func() bool { return len(pub.Events()) == 1 }, time.Second, 5*time.Millisecond)
	event := pub.Events()[0]
	assert.Equal(t, "upload.completed", event.Type)
	assert.Equal(t, task.ID(), event.TaskID)
	assert.Equal(t, "ok", event.Result)
	pub.AssertExpectations(t)
}

func TestRunnerCloseCancelsPending(t *testing.T) {
	r := NewRunner(Config{}, nil, nil, nil)

	task, err := r.Start("k", func(ctx context.Context) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	require.NoError(t, err)

	r.Close()
	assert.Equal(t, StatusCancelled, task.Status())

	_, err = r.Start("k2", func(ctx context.Context) (interface{}, error) { return nil, nil })
	assert.ErrorIs(t, err, ErrRunnerClosed)
}
