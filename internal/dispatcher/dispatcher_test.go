package dispatcher

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher(t *testing.T) *Dispatcher {
	t.Helper()
	d := New(Config{
		QueueSize:   64,
		TaskTimeout: 5 * time.Second,
		IdleTTL:     50 * time.Millisecond,
	}, zap.NewNop())
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = d.Stop(ctx)
	})
	return d
}

func TestEnqueueRunsTask(t *testing.T) {
	d := newTestDispatcher(t)
	done := make(chan struct{})

	err := d.Enqueue(uuid.New(), "test", func(ctx context.Context) error {
		close(done)
		return nil
	})
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task never ran")
	}
}

func TestFIFOOrderingPerUser(t *testing.T) {
	d := newTestDispatcher(t)
	userID := uuid.New()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		i := i
		wg.Add(1)
		err := d.Enqueue(userID, "ordered", func(ctx context.Context) error {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		})
		require.NoError(t, err)
	}
	wg.Wait()

	require.Len(t, order, 20)
	for i, v := range order {
		assert.Equal(t, i, v, "tasks must run in enqueue order")
	}
}

func TestSerializationWithinUser(t *testing.T) {
	d := newTestDispatcher(t)
	userID := uuid.New()

	var running int32
	var overlapped int32
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		err := d.Enqueue(userID, "serial", func(ctx context.Context) error {
			defer wg.Done()
			if atomic.AddInt32(&running, 1) > 1 {
				atomic.StoreInt32(&overlapped, 1)
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Zero(t, atomic.LoadInt32(&overlapped), "tasks for one user must never overlap")
}

func TestParallelismAcrossUsers(t *testing.T) {
	d := newTestDispatcher(t)

	var peak int32
	var current int32
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		err := d.Enqueue(uuid.New(), "parallel", func(ctx context.Context) error {
			defer wg.Done()
			n := atomic.AddInt32(&current, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&current, -1)
			return nil
		})
		require.NoError(t, err)
	}
	wg.Wait()

	assert.Greater(t, atomic.LoadInt32(&peak), int32(1), "different users should run concurrently")
}

func TestTaskFailureDoesNotStopQueue(t *testing.T) {
	d := newTestDispatcher(t)
	userID := uuid.New()
	done := make(chan struct{})

	require.NoError(t, d.Enqueue(userID, "fails", func(ctx context.Context) error {
		return assert.AnError
	}))
	require.NoError(t, d.Enqueue(userID, "panics", func(ctx context.Context) error {
		panic("boom")
	}))
	require.NoError(t, d.Enqueue(userID, "succeeds", func(ctx context.Context) error {
		close(done)
		return nil
	}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queue stalled after a failing task")
	}
}

func TestIdleQueueIsReaped(t *testing.T) {
	d := newTestDispatcher(t)
	userID := uuid.New()

	ran := make(chan struct{})
	require.NoError(t, d.Enqueue(userID, "one", func(ctx context.Context) error {
		close(ran)
		return nil
	}))
	<-ran

	// Wait past the idle TTL, then confirm a new enqueue still works
	// (a fresh queue is created transparently).
	time.Sleep(150 * time.Millisecond)

	again := make(chan struct{})
	require.NoError(t, d.Enqueue(userID, "two", func(ctx context.Context) error {
		close(again)
		return nil
	}))
	select {
	case <-again:
	case <-time.After(2 * time.Second):
		t.Fatal("task on recreated queue never ran")
	}
}

func TestStopDrainsQueuedTasks(t *testing.T) {
	d := New(Config{
		QueueSize:   8,
		TaskTimeout: time.Second,
		IdleTTL:     time.Minute,
	}, zap.NewNop())
	userID := uuid.New()

	var ran int32
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Enqueue(userID, "drain", func(ctx context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, d.Stop(ctx))

	assert.Equal(t, int32(5), atomic.LoadInt32(&ran))
	assert.Error(t, d.Enqueue(userID, "late", func(ctx context.Context) error { return nil }))
}
