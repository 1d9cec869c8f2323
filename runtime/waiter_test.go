package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChanWaiter_WakeUnblocksWait(t *testing.T) {
	w := newChanWaiter()
	done := make(chan error, 1)
	go func() {
		done <- w.Wait(context.Background(), time.Time{})
	}()

	w.Wake()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wake did not unblock a pending Wait")
	}
}

func TestChanWaiter_WaitReturnsAtDeadline(t *testing.T) {
	w := newChanWaiter()
	start := time.Now()
	err := w.Wait(context.Background(), start.Add(10*time.Millisecond))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestChanWaiter_WaitReturnsOnContextCancel(t *testing.T) {
	w := newChanWaiter()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Wait(ctx, time.Time{})
	assert.ErrorIs(t, err, context.Canceled)
}
