package runtime

import (
	"sync"

	"github.com/joeycumines/goroutineid"
)

// registry is component E (§3): a thread-local slot holding the active
// fiber, that thread's Scheduler, and its MAIN stub. Go has no OS-thread
// affinity a goroutine can rely on and no native thread-local storage, and
// — critically — a Scheduler's fibers each run on their *own* dedicated
// goroutine (the one NewContext spawns, context.go), not on the goroutine
// that created the Scheduler. So keying purely on whichever goroutine
// calls Init/Current is not enough to make Current/ActiveFiber work from
// inside a running fiber's body (§6 boundary item 1's fiber_active()):
// every goroutine that ever becomes "the one currently holding a given
// Scheduler's baton" — MAIN's own goroutine, the dispatcher's goroutine,
// and every worker goroutine Scheduler.Spawn creates — registers itself
// against that same Scheduler before running any fiber code, via
// registerCurrentGoroutine/unregisterCurrentGoroutine below.
var (
	registryMu sync.Mutex
	registry   = make(map[int64]*Scheduler)
)

// registerCurrentGoroutine binds the calling goroutine to s. Called once,
// from inside the goroutine itself, at the start of the dispatcher's and
// every worker's entry trampoline (scheduler.go), and by Init/Current for
// whichever goroutine creates or first looks up a Scheduler (its MAIN).
func registerCurrentGoroutine(s *Scheduler) {
	id := goroutineid.Get()
	registryMu.Lock()
	registry[id] = s
	registryMu.Unlock()
}

// unregisterCurrentGoroutine removes the calling goroutine's binding. Used
// by worker/dispatcher trampolines once their goroutine is about to exit.
// Shutdown removes its own goroutine's binding directly under registryMu.
func unregisterCurrentGoroutine() {
	id := goroutineid.Get()
	registryMu.Lock()
	delete(registry, id)
	registryMu.Unlock()
}

// Init creates (or returns the existing) Scheduler bound to the calling
// goroutine, applying opts only on first creation. Call it before any
// fiber work on a goroutine that needs non-default options (a custom
// StackAllocator, dispatch loop, or Waiter); Current implicitly calls it
// with no options otherwise.
func Init(opts ...Option) *Scheduler {
	id := goroutineid.Get()
	registryMu.Lock()
	if s, ok := registry[id]; ok {
		registryMu.Unlock()
		return s
	}
	registryMu.Unlock()

	s := NewScheduler(opts...)
	registerCurrentGoroutine(s)
	return s
}

// Current returns the Scheduler bound to the calling goroutine, lazily
// creating a default one (§4.5) if none exists yet. Called from within a
// fiber spawned by Scheduler.Spawn, or from within the dispatcher, it
// returns that fiber's real Scheduler rather than constructing an
// unrelated one, because both register their own goroutine against it on
// entry (see scheduler.go).
func Current() *Scheduler {
	return Init()
}

// ActiveFiber returns the fiber currently holding the baton on the calling
// goroutine's Scheduler — correct when called from MAIN, from the
// dispatcher, or from inside any Scheduler.Spawn-created fiber's own
// function body (§6 boundary item 1), since all three register themselves
// against their owning Scheduler before user code ever runs.
func ActiveFiber() *FiberControl {
	return Current().Active()
}

// Shutdown tears down the Scheduler bound to the calling goroutine, if one
// was ever created, by calling Scheduler.Close, which reclaims the
// dispatcher and drains the terminate queue. The MAIN stub owns no stack
// and is not released or destroyed by Shutdown or Close.
func Shutdown() {
	id := goroutineid.Get()
	registryMu.Lock()
	s, ok := registry[id]
	if ok {
		delete(registry, id)
	}
	registryMu.Unlock()
	if ok {
		s.Close()
	}
}
