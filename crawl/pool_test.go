package crawl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolCompletesWithinBound(t *testing.T) {
	const workers = 4
	const tasks = 4
	const sleep = 50 * time.Millisecond

	pool := NewPool(context.Background(), workers, 0)
	defer pool.Shutdown(time.Second, false, true)

	start := time.Now()
	fns := make([]TaskFunc, tasks)
	for i := range fns {
		fns[i] = func(ctx context.Context) (any, error) {
			time.Sleep(sleep)
			return "ok", nil
		}
	}
	handles := pool.SubmitAll(fns)
	for _, h := range handles {
		result, err := h.Wait(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
	}
	assert.Less(t, time.Since(start), sleep*12/10)
	assert.True(t, pool.IsIdle())
}

func TestPoolWrapsTaskErrorInPoolError(t *testing.T) {
	pool := NewPool(context.Background(), 2, 0)
	defer pool.Shutdown(time.Second, false, true)

	h := pool.Submit(func(ctx context.Context) (any, error) {
		return nil, assertErr{}
	})
	_, err := h.Wait(context.Background())
	var poolErr *PoolError
	require.ErrorAs(t, err, &poolErr)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestPoolRecoversPanic(t *testing.T) {
	pool := NewPool(context.Background(), 1, 0)
	defer pool.Shutdown(time.Second, false, true)

	h := pool.Submit(func(ctx context.Context) (any, error) {
		panic("kaboom")
	})
	_, err := h.Wait(context.Background())
	require.Error(t, err)
}

func TestPoolShutdownCancelQueueCancelsUnstartedHandles(t *testing.T) {
	pool := NewPool(context.Background(), 1, 0)

	var started int32
	block := make(chan struct{})
	// occupy the sole worker so the rest of the tasks never start
	first := pool.Submit(func(ctx context.Context) (any, error) {
		atomic.AddInt32(&started, 1)
		<-block
		return nil, nil
	})

	second := pool.Submit(func(ctx context.Context) (any, error) {
		atomic.AddInt32(&started, 1)
		return nil, nil
	})

	pool.Shutdown(50*time.Millisecond, true, false)
	close(block)

	_, err := second.Wait(context.Background())
	assert.Error(t, err)
	assert.True(t, second.Cancelled())
	assert.Equal(t, int32(1), atomic.LoadInt32(&started))

	_, _ = first.Wait(context.Background())
}

func TestCollectorDeliversCompletedHandlesInCompletionOrder(t *testing.T) {
	pool := NewPool(context.Background(), 2, 0)
	defer pool.Shutdown(time.Second, false, true)
	collector := NewCollector(pool, 10)

	fast := collector.Submit(func(ctx context.Context) (any, error) {
		return "fast", nil
	})
	slow := collector.Submit(func(ctx context.Context) (any, error) {
		time.Sleep(50 * time.Millisecond)
		return "slow", nil
	})

	var order []*Handle
	for i := 0; i < 2; i++ {
		h, ok := collector.Next(context.Background())
		require.True(t, ok)
		order = append(order, h)
	}
	assert.Same(t, fast, order[0])
	assert.Same(t, slow, order[1])
}
