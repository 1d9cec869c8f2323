package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CurrentIsStableWithinAGoroutine(t *testing.T) {
	defer Shutdown()

	a := Current()
	b := Current()
	assert.Same(t, a, b)
}

func TestRegistry_DifferentGoroutinesGetDifferentSchedulers(t *testing.T) {
	defer Shutdown()

	mine := Current()

	other := make(chan *Scheduler, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s := Current()
		other <- s
		Shutdown()
	}()
	<-done

	assert.NotSame(t, mine, <-other)
}

func TestRegistry_InitAppliesOptionsOnlyOnFirstCall(t *testing.T) {
	defer Shutdown()

	s1 := Init(WithStackSize(999))
	require.Equal(t, 999, s1.stackSize)

	s2 := Init(WithStackSize(111))
	assert.Same(t, s1, s2)
	assert.Equal(t, 999, s2.stackSize) // second call's options are ignored
}

func TestRegistry_ShutdownClearsTheSlot(t *testing.T) {
	first := Current()
	Shutdown()
	second := Current()
	defer Shutdown()
	assert.NotSame(t, first, second)
}

// TestRegistry_CurrentAndActiveFiberResolveFromInsideASpawnedFiber is the
// §6 boundary item 1 scenario the review flagged as untested: a fiber's
// own body runs on a goroutine Scheduler.Spawn creates, distinct from the
// goroutine that called Current()/Spawn — Current/ActiveFiber must still
// resolve to that real Scheduler and fiber, not lazily construct an
// unrelated stand-in.
func TestRegistry_CurrentAndActiveFiberResolveFromInsideASpawnedFiber(t *testing.T) {
	defer Shutdown()

	s := Current()

	var seenScheduler *Scheduler
	var seenActive *FiberControl
	f := s.Spawn("probe", func(self *FiberControl) {
		seenScheduler = Current()
		seenActive = ActiveFiber()
	})
	f.Join(s.Main())

	assert.Same(t, s, seenScheduler)
	assert.Same(t, f, seenActive)
}
