package workerpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRunsSubmittedJobsConcurrently(t *testing.T) {
	pool := New(4, 10, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	var completed int64
	done := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		err := pool.Submit(ctx, Job{
			Name: "test-job",
			Run: func(ctx context.Context, jobCtx map[string]interface{}) error {
				atomic.AddInt64(&completed, 1)
				done <- struct{}{}
				return nil
			},
		})
		require.NoError(t, err)
	}

	for i := 0; i < 10; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for jobs to complete")
		}
	}
	assert.Equal(t, int64(10), atomic.LoadInt64(&completed))
}

func TestPoolInvokesErrorHandlerOnJobFailure(t *testing.T) {
	errs := make(chan error, 1)
	pool := New(1, 1, func(job Job, err error) { errs <- err })
	ctx := context.Background()
	pool.Start(ctx)
	defer pool.Stop()

	testErr := assert.AnError
	require.NoError(t, pool.Submit(ctx, Job{
		Name: "failing-job",
		Run:  func(ctx context.Context, jobCtx map[string]interface{}) error { return testErr },
	}))

	select {
	case err := <-errs:
		assert.Equal(t, testErr, err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error handler")
	}
}

func TestHealthReportsWorkerCount(t *testing.T) {
	pool := New(3, 5, nil)
	pool.Start(context.Background())
	defer pool.Stop()

	health := pool.Health()
	assert.Equal(t, 3, health.TotalWorkers)
	assert.Equal(t, 5, health.QueueCapacity)
	assert.Len(t, health.WorkerStats, 3)
}
