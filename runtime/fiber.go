package runtime

import (
	"fmt"
	"sync/atomic"
)

// Kind classifies a FiberControl the way §3 requires: MAIN stubs the OS
// thread's native stack, DISPATCH is the per-Scheduler dispatch fiber, and
// WORKER is everything user code spawns.
type Kind int8

const (
	KindMain Kind = iota
	KindDispatch
	KindWorker
)

func (k Kind) String() string {
	switch k {
	case KindMain:
		return "MAIN"
	case KindDispatch:
		return "DISPATCH"
	case KindWorker:
		return "WORKER"
	default:
		return "UNKNOWN"
	}
}

// nameCapacity bounds FiberControl.name the way §3 calls for ("short human
// label, bounded, fixed capacity, e.g. 16 bytes").
const nameCapacity = 16

// FiberControl is the per-fiber control block (component B, §3). Most of
// its fields are only ever touched by whichever fiber currently holds the
// baton (see doc.go/context.go), so — exactly as §5 says — no lock
// protects them; useCount and terminated are the two fields a fiber from a
// different scheduling context can legally touch, so they are atomic.
type FiberControl struct {
	kind    Kind
	name    [nameCapacity]byte
	nameLen uint8

	useCount atomic.Int32
	started  atomic.Bool

	scheduler *Scheduler // non-owning; settable exactly once (§3)

	ctx *Context

	sched     schedHook // ready/sleep/terminate membership (at most one)
	wait      waitHook  // this fiber's membership in another's wait_queue
	waitQueue joinFIFO  // joiners blocked on *this* fiber's termination

	terminated atomic.Bool
}

func newFiberControl(kind Kind, name string) *FiberControl {
	f := &FiberControl{kind: kind}
	f.useCount.Store(1)
	f.setName(name)
	return f
}

func (f *FiberControl) setName(name string) {
	n := copy(f.name[:], name)
	f.nameLen = uint8(n)
}

// Name returns the fiber's bounded label.
func (f *FiberControl) Name() string {
	return string(f.name[:f.nameLen])
}

// DebugName returns a label suitable for log lines and panic messages.
func (f *FiberControl) DebugName() string {
	return fmt.Sprintf("%s(%s)", f.Name(), f.kind)
}

// Kind returns the fiber's classification.
func (f *FiberControl) Kind() Kind { return f.kind }

// IsTerminated reports whether the fiber's user function has returned
// (§3 flags.terminated).
func (f *FiberControl) IsTerminated() bool { return f.terminated.Load() }

// Scheduler returns the Scheduler this fiber is attached to, or nil.
func (f *FiberControl) Scheduler() *Scheduler { return f.scheduler }

// Retain increments the reference count (§3 use_count).
func (f *FiberControl) Retain() {
	f.useCount.Add(1)
}

// Release decrements the reference count and, if it reaches zero and from
// is a different fiber than f, destroys f immediately (§4.2). A release
// from f itself that brings the count to zero neither destroys f nor links
// it into the terminate queue; it only returns false. Nothing in this
// package releases a fiber from itself: Terminate queues f through
// ScheduleTermination and leaves its reference for DestroyTerminated to
// drop. It reports whether this call actually destroyed f, so a caller like
// Scheduler.DestroyTerminated can tell a real reclamation apart from a
// release that merely dropped one of several outstanding references (§4.3,
// Q4).
func (f *FiberControl) Release(from *FiberControl) bool {
	if f.useCount.Add(-1) != 0 {
		return false
	}
	if from == f {
		// Not destroyed from its own stack, and not queued here either.
		return false
	}
	f.destroyNow()
	return true
}

// destroyNow pulses the fiber's context with the empty handle so its
// goroutine unwinds and releases its stack, then frees bookkeeping. It must
// never be called from the fiber being destroyed (§4.2, §5).
func (f *FiberControl) destroyNow() {
	if f.ctx == nil {
		return
	}
	stack := f.ctx.stack
	f.ctx.Resume(destroyHandle)
	if f.scheduler != nil {
		_ = f.scheduler.allocator.Deallocate(stack)
	}
}

// Start attaches f to s and marks it ready (§4.2 Start). Pre: f has not
// already been started and has not terminated.
func (f *FiberControl) Start(s *Scheduler) {
	if f.terminated.Load() {
		invariantViolation("fiber %s: Start called after termination", f.DebugName())
	}
	if !f.started.CompareAndSwap(false, true) {
		invariantViolation("fiber %s: Start called twice", f.DebugName())
	}
	s.Attach(f)
	s.MarkReady(f)
}

// Join suspends self until f terminates (§4.2 Join). Pre: self != f and
// both share a Scheduler. If f has already terminated this returns without
// suspending.
func (f *FiberControl) Join(self *FiberControl) {
	if self == f {
		invariantViolation("fiber %s: Join called on self", f.DebugName())
	}
	if self.scheduler == nil || f.scheduler == nil || self.scheduler != f.scheduler {
		invariantViolation("fiber %s: Join requires caller and target to share a Scheduler", f.DebugName())
	}
	if f.terminated.Load() {
		return
	}
	f.waitQueue.pushBack(self)
	self.scheduler.Preempt()
}

// Terminate is invoked from within f when its user function returns
// (§4.2). It marks f terminated, schedules its reclamation, wakes every
// joiner (front-to-back, §5 ordering guarantee), and yields via Preempt —
// which, for a terminated fiber, only ever returns when DestroyTerminated
// pulses this context to let its goroutine unwind.
func (f *FiberControl) Terminate() {
	f.terminated.Store(true)
	s := f.scheduler
	s.ScheduleTermination(f)
	for !f.waitQueue.empty() {
		joiner := f.waitQueue.popFront()
		joiner.scheduler.MarkReady(joiner)
	}
	s.Preempt()
}
