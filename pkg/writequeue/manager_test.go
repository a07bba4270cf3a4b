package writequeue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T, cfg *Config) *Manager {
	t.Helper()
	m := New(cfg, nil)
	t.Cleanup(func() {
		_ = m.Shutdown(context.Background())
	})
	return m
}

func TestExecute_SerializesPerKey(t *testing.T) {
	m := newTestManager(t, nil)

	var running atomic.Int32
	var overlap atomic.Bool
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Execute(context.Background(), "main", func() error {
				if running.Add(1) > 1 {
					overlap.Store(true)
				}
				time.Sleep(time.Millisecond)
				running.Add(-1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load(), "operations under one key must not overlap")
	assert.Equal(t, 1, m.QueueCount())
}

func TestExecute_ReturnsFnError(t *testing.T) {
	m := newTestManager(t, nil)
	want := assert.AnError
	err := m.Execute(context.Background(), "tools", func() error { return want })
	assert.ErrorIs(t, err, want)
}

func TestExecute_QueueFull(t *testing.T) {
	m := newTestManager(t, &Config{QueueCapacity: 1, WriteTimeout: 5 * time.Second})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "main", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	go func() {
		_ = m.Execute(context.Background(), "main", func() error { return nil })
	}()
	require.Eventually(t, func() bool { return m.QueuedCount("main") == 1 }, time.Second, time.Millisecond)

	err := m.Execute(context.Background(), "main", func() error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueFull)
	close(release)
}

func TestExecute_TimeoutNeverRunsFn(t *testing.T) {
	m := newTestManager(t, &Config{WriteTimeout: 30 * time.Millisecond})

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = m.Execute(context.Background(), "main", func() error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	var ran atomic.Bool
	err := m.Execute(context.Background(), "main", func() error {
		ran.Store(true)
		return nil
	})
	assert.ErrorIs(t, err, ErrWriteTimeout)

	close(release)
	require.NoError(t, m.Execute(context.Background(), "main", func() error { return nil }))
	assert.False(t, ran.Load())
}

func TestExecuteMany_OverlappingKeysDoNotDeadlock(t *testing.T) {
	m := newTestManager(t, nil)

	var wg sync.WaitGroup
	var count atomic.Int32
	for i := 0; i < 50; i++ {
		keys := []string{"main", "footer"}
		if i%2 == 0 {
			keys = []string{"footer", "main", "footer"}
		}
		wg.Add(1)
		go func(keys []string) {
			defer wg.Done()
			err := m.ExecuteMany(context.Background(), keys, func() error {
				count.Add(1)
				return nil
			})
			assert.NoError(t, err)
		}(keys)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("ExecuteMany deadlocked")
	}
	assert.Equal(t, int32(50), count.Load())
}

func TestExecute_AfterShutdown(t *testing.T) {
	m := New(nil, nil)
	require.NoError(t, m.Shutdown(context.Background()))
	assert.True(t, m.IsClosed())

	err := m.Execute(context.Background(), "main", func() error { return nil })
	assert.ErrorIs(t, err, ErrWriteQueueClosed)
}
