package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrRunnerClosed is returned by Submit after Shutdown has begun
var ErrRunnerClosed = errors.New("worker runner is closed")

// Task is a handle to a submitted unit of background work. Callers
// may ignore it (fire-and-forget) or wait on Done and inspect Err.
type Task struct {
	name string
	done chan struct{}
	err  error
}

// Name returns the task's name
func (t *Task) Name() string {
	return t.name
}

// Done is closed when the task has finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's failure, if any. Only valid after Done is
// closed.
func (t *Task) Err() error {
	return t.err
}

// Runner executes background tasks on their own goroutines and tracks
// them for graceful shutdown. Task failures are logged; they are also
// retained on the Task handle for callers that care.
type Runner struct {
	logger *slog.Logger

	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

// NewRunner creates a new task runner
func NewRunner(logger *slog.Logger) *Runner {
	return &Runner{logger: logger}
}

// Submit schedules fn to run in the background and returns its handle
// immediately. The context passed to fn is the one given here; the
// caller controls cancellation.
func (r *Runner) Submit(ctx context.Context, name string, fn func(context.Context) error) (*Task, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrRunnerClosed
	}
	r.wg.Add(1)
	r.mu.Unlock()

	task := &Task{
		name: name,
		done: make(chan struct{}),
	}

	go func() {
		defer r.wg.Done()
		defer close(task.done)

		r.logger.Info("background task started", slog.String("task", name))
		if err := fn(ctx); err != nil {
			task.err = err
			r.logger.Error("background task failed",
				slog.String("task", name),
				slog.String("error", err.Error()),
			)
			return
		}
		r.logger.Info("background task finished", slog.String("task", name))
	}()

	return task, nil
}

// Shutdown stops accepting new tasks and waits for running ones to
// finish, up to the context deadline.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
