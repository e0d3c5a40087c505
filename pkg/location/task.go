package location

import (
	"context"
	"sync"
)

// Locator is anything that can produce one acquisition Result
type Locator interface {
	Acquire(ctx context.Context) Result
}

// Task is a one-shot, cancellable acquisition running off the caller's
// goroutine. Done yields exactly one Result, or is closed without a value
// once the task has been cancelled.
type Task struct {
	cancel context.CancelFunc
	done   chan Result
	once   sync.Once
}

// Start spawns the acquisition. Cancelling ctx has the same effect as Cancel.
func Start(ctx context.Context, a Locator) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel: cancel,
		done:   make(chan Result, 1),
	}

	go func() {
		defer close(t.done)
		defer cancel()
		res := a.Acquire(ctx)
		if ctx.Err() != nil {
			// Torn down before the result landed; nobody may observe it.
			return
		}
		t.done <- res
	}()

	return t
}

// Done returns the channel the result is delivered on
func (t *Task) Done() <-chan Result { return t.done }

// Cancel abandons the acquisition. It is safe to call more than once and
// after the result has been delivered.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
}

// Wait blocks until the result is delivered or the task is cancelled.
// ok is false when no result will ever arrive.
func (t *Task) Wait() (res Result, ok bool) {
	res, ok = <-t.done
	return res, ok
}
