//go:build linux

package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventfdWaiter_WakeUnblocksWait(t *testing.T) {
	w, err := NewEventfdWaiter()
	require.NoError(t, err)
	defer func() { _ = w.(*eventfdWaiter).Close() }()

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

func TestErrWaiterInit_IsDistinctFromErrStackAlloc(t *testing.T) {
	// ErrWaiterInit must be a distinct sentinel from ErrStackAlloc so a
	// caller classifying errors via errors.Is can't confuse the two
	// unrelated failure kinds (§7).
	assert.NotErrorIs(t, ErrWaiterInit, ErrStackAlloc)
}
