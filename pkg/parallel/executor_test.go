package parallel_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/devrig-sh/devrig/pkg/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errProbeFailed = errors.New("probe failed")

func TestDefaultMaxConcurrency(t *testing.T) {
	t.Parallel()

	maxConcurrency := parallel.DefaultMaxConcurrency()
	assert.GreaterOrEqual(t, maxConcurrency, int64(2), "should be at least 2")
	assert.LessOrEqual(t, maxConcurrency, int64(8), "should be capped at 8")
}

func TestNewExecutor(t *testing.T) {
	t.Parallel()

	// Test with positive value
	executor := parallel.NewExecutor(4)
	assert.NotNil(t, executor)

	// Test with zero (should use default)
	executor = parallel.NewExecutor(0)
	assert.NotNil(t, executor)

	// Test with negative (should use default)
	executor = parallel.NewExecutor(-1)
	assert.NotNil(t, executor)
}

func TestExecutor_Execute_NoTasks(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(4)
	err := executor.Execute(context.Background())
	require.NoError(t, err)
}

func TestExecutor_Execute_SingleTask(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(4)
	executed := false

	err := executor.Execute(context.Background(), func(_ context.Context) error {
		executed = true

		return nil
	})

	require.NoError(t, err)
	assert.True(t, executed, "task should have been executed")
}

func TestExecutor_Execute_MultipleTasks(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(4)

	var counter atomic.Int32

	tasks := make([]parallel.Task, 5)
	for i := range tasks {
		tasks[i] = func(_ context.Context) error {
			counter.Add(1)

			return nil
		}
	}

	err := executor.Execute(context.Background(), tasks...)
	require.NoError(t, err)
	assert.Equal(t, int32(5), counter.Load(), "all tasks should have executed")
}

func TestExecutor_Execute_PropagatesTaskError(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(1) // Force sequential to make test deterministic

	err := executor.Execute(context.Background(),
		func(_ context.Context) error {
			return errProbeFailed
		},
		func(_ context.Context) error {
			return nil
		},
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, errProbeFailed)
	assert.Contains(t, err.Error(), "parallel execution")
}

func TestExecutor_Execute_RespectsContextCancellation(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Need multiple tasks to go through the semaphore/errgroup path
	err := executor.Execute(ctx,
		func(_ context.Context) error { return nil },
		func(_ context.Context) error { return nil },
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecutor_Execute_ParallelExecution(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(4)

	var (
		maxConcurrent atomic.Int32
		current       atomic.Int32
	)

	tasks := make([]parallel.Task, 8)
	for taskIdx := range tasks {
		tasks[taskIdx] = func(_ context.Context) error {
			currentValue := current.Add(1)

			for {
				oldValue := maxConcurrent.Load()

				needsUpdate := currentValue > oldValue
				if !needsUpdate || maxConcurrent.CompareAndSwap(oldValue, currentValue) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)
			current.Add(-1)

			return nil
		}
	}

	err := executor.Execute(context.Background(), tasks...)
	require.NoError(t, err)
	assert.Greater(t, maxConcurrent.Load(), int32(1), "tasks should run in parallel")
}

func TestExecutor_Execute_EnforcesConcurrencyBound(t *testing.T) {
	t.Parallel()

	executor := parallel.NewExecutor(2)

	var (
		maxConcurrent atomic.Int32
		current       atomic.Int32
	)

	tasks := make([]parallel.Task, 8)
	for taskIdx := range tasks {
		tasks[taskIdx] = func(_ context.Context) error {
			currentValue := current.Add(1)

			for {
				oldValue := maxConcurrent.Load()

				needsUpdate := currentValue > oldValue
				if !needsUpdate || maxConcurrent.CompareAndSwap(oldValue, currentValue) {
					break
				}
			}

			time.Sleep(10 * time.Millisecond)
			current.Add(-1)

			return nil
		}
	}

	err := executor.Execute(context.Background(), tasks...)
	require.NoError(t, err)
	assert.LessOrEqual(t, maxConcurrent.Load(), int32(2), "semaphore should bound in-flight tasks")
}
