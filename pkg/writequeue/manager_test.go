package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestExecute_SerializesSameKey(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(nil, nil)
	defer func() { require.NoError(t, m.Shutdown(context.Background())) }()

	var running, maxRunning int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), "prompt:1", func(ctx context.Context) error {
				n := atomic.AddInt32(&running, 1)
				for {
					old := atomic.LoadInt32(&maxRunning)
					if n <= old || atomic.CompareAndSwapInt32(&maxRunning, old, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxRunning))
	assert.Equal(t, int64(20), m.GetMetrics().Executed)
}

func TestExecute_PropagatesError(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(nil, nil)
	defer func() { _ = m.Shutdown(context.Background()) }()

	boom := errors.New("boom")
	err := m.Execute(context.Background(), "k", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestExecute_QueueFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(&Config{QueueCapacity: 1, WriteTimeout: time.Second}, nil)
	defer func() { _ = m.Shutdown(context.Background()) }()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "k", func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	// 占满容量为 1 的队列
	go func() {
		_ = m.Execute(context.Background(), "k", func(ctx context.Context) error { return nil })
	}()
	require.Eventually(t, func() bool { return m.GetMetrics().Queued == 1 }, time.Second, time.Millisecond)

	err := m.Execute(context.Background(), "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueFull)
	assert.Equal(t, int64(1), m.GetMetrics().Rejected)

	close(release)
}

func TestExecute_AfterShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))
	require.NoError(t, m.Shutdown(context.Background()))

	err := m.Execute(context.Background(), "k", func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)
	assert.True(t, m.IsClosed())
}

func TestDoCleanup_RemovesIdleQueues(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := New(&Config{IdleTimeout: time.Hour}, nil)
	defer func() { _ = m.Shutdown(context.Background()) }()

	require.NoError(t, m.Execute(context.Background(), "a", func(ctx context.Context) error { return nil }))
	assert.Equal(t, 1, m.GetMetrics().ActiveQueues)

	m.mu.Lock()
	m.queues["a"].lastUsed.Store(time.Now().Add(-2 * time.Hour).UnixNano())
	m.mu.Unlock()

	m.doCleanup()
	assert.Equal(t, 0, m.GetMetrics().ActiveQueues)

	// 回收后同一键可以重新使用
	require.NoError(t, m.Execute(context.Background(), "a", func(ctx context.Context) error { return nil }))
}
