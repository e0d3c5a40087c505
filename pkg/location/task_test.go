package location

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedLocator struct {
	res     Result
	release chan struct{}
}

func (l *fixedLocator) Acquire(ctx context.Context) Result {
	if l.release != nil {
		select {
		case <-l.release:
		case <-ctx.Done():
		}
	}
	return l.res
}

func TestTaskDeliversOnce(t *testing.T) {
	task := Start(context.Background(), &fixedLocator{res: Result{Outcome: OutcomeGranted, Coordinate: brasilia}})

	res, ok := task.Wait()
	require.True(t, ok)
	assert.Equal(t, brasilia, res.Coordinate)

	_, ok = <-task.Done()
	assert.False(t, ok, "channel must be closed after the single result")

	task.Cancel()
	task.Cancel()
}

func TestTaskCancelSuppressesResult(t *testing.T) {
	loc := &fixedLocator{res: Result{Outcome: OutcomeGranted}, release: make(chan struct{})}
	task := Start(context.Background(), loc)

	task.Cancel()
	close(loc.release)

	select {
	case _, ok := <-task.Done():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("task did not finish after cancel")
	}
}

func TestTaskParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	task := Start(ctx, &fixedLocator{res: Result{Outcome: OutcomeGranted}, release: make(chan struct{})})
	cancel()

	_, ok := task.Wait()
	assert.False(t, ok)
}
