package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ReturnsTaskResult(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 4}, nil)
	defer p.Shutdown(context.Background())

	want := errors.New("rebuild failed")
	err := p.Submit(context.Background(), func(ctx context.Context) error { return want })
	assert.ErrorIs(t, err, want)
}

func TestSubmit_RecoversPanic(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, nil)
	defer p.Shutdown(context.Background())

	err := p.Submit(context.Background(), func(ctx context.Context) error { panic("boom") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	// the worker survives the panic
	assert.NoError(t, p.Submit(context.Background(), func(ctx context.Context) error { return nil }))
}

func TestSubmitAsync_RunsAndShutdownWaits(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 8}, nil)

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, p.SubmitAsync(context.Background(), func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			ran.Add(1)
			return nil
		}))
	}

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(5), ran.Load())
	assert.ErrorIs(t, p.SubmitAsync(context.Background(), func(ctx context.Context) error { return nil }), ErrWorkerPoolClosed)
}

func TestRun_TaskTimeoutCancelsContext(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1, TaskTimeout: 20 * time.Millisecond}, nil)
	defer p.Shutdown(context.Background())

	err := p.Submit(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
