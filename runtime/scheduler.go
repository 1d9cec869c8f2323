package runtime

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// SchedulerStats is a supplemented feature (not named by the core spec)
// grounded on the teacher's Scheduler.stats/GetStats/PrintStats
// (runtime/scheduler.go): cheap counters a host program can poll to watch
// a scheduler's behaviour without instrumenting every call site itself.
type SchedulerStats struct {
	FibersStarted      int64
	FibersTerminated   int64
	FibersDestroyed    int64
	ContextSwitches    int64
	DispatcherSwitches int64
}

// Scheduler is component C (§3): the owner of one OS thread's ready queue,
// sleep queue, terminate queue, and the single dispatcher fiber that keeps
// the thread alive when nothing else is runnable. Every field below is
// private to the OS thread that owns this Scheduler and is touched only
// while that thread holds the baton (see context.go) — §5's "no locks
// required" — except the stats counters, which use atomics purely so a
// different goroutine may poll Stats without synchronising with the
// scheduling thread.
type Scheduler struct {
	active     *FiberControl
	main       *FiberControl
	dispatcher *FiberControl

	ready     fiberFIFO
	sleepQ    sleepHeap
	terminate fiberFIFO

	allocator StackAllocator
	stackSize int
	logger    zerolog.Logger
	waiter    Waiter
	dispatch  DispatchFunc

	liveWorkers int // attached, not-yet-terminated WORKER fibers
	shutdown    bool

	stats SchedulerStats
}

// NewScheduler constructs a Scheduler attached to the calling OS thread,
// creates its MAIN stub and its dispatcher fiber, and makes MAIN the
// active fiber (§4.5 registry lazy-init, though the plain constructor form
// is exposed here so registry.go can drive it). Callers almost always want
// Current() / registry.go's lazy per-thread accessor instead of calling
// this directly.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{
		allocator: NewHeapAllocator(),
		stackSize: DefaultStackSize,
		logger:    currentDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.waiter == nil {
		s.waiter = newChanWaiter()
	}
	if s.dispatch == nil {
		s.dispatch = defaultDispatchLoop
	}

	s.main = newFiberControl(KindMain, "main")
	s.main.scheduler = s
	s.main.started.Store(true)
	s.main.ctx = &Context{resume: make(chan Handle)}
	s.active = s.main

	s.dispatcher = newFiberControl(KindDispatch, "dispatch")
	s.dispatcher.scheduler = s
	s.dispatcher.started.Store(true)
	stack, err := s.allocator.Allocate(s.stackSize)
	if err != nil {
		invariantViolation("allocating dispatcher stack: %v", err)
	}
	s.dispatcher.ctx = NewContext(stack, func(h Handle) {
		registerCurrentGoroutine(s)
		defer unregisterCurrentGoroutine()
		s.runDispatcher(h)
	})

	return s
}

// Spawn allocates a stack, builds a WORKER FiberControl, and starts it
// (§4.2 Start). fn is run on its own goroutine; once fn returns, the
// fiber's Terminate is called automatically, waking any joiners and
// releasing the fiber the moment nothing references it any longer.
func (s *Scheduler) Spawn(name string, fn func(*FiberControl)) *FiberControl {
	f := newFiberControl(KindWorker, name)
	stack, err := s.allocator.Allocate(s.stackSize)
	if err != nil {
		invariantViolation("allocating stack for fiber %s: %v", f.DebugName(), err)
	}
	f.ctx = NewContext(stack, func(Handle) {
		registerCurrentGoroutine(s)
		defer unregisterCurrentGoroutine()
		fn(f)
		f.Terminate()
	})
	f.Start(s)
	s.logger.Debug().Str("fiber", f.DebugName()).Msg("spawned")
	return f
}

// Attach records f as belonging to s (§4.2 Start's precondition) and
// counts it if it is a WORKER, so the default dispatch loop's shutdown
// condition (§4.4a: "shutdown requested and worker_count == 0") can be
// evaluated without scanning every fiber.
func (s *Scheduler) Attach(f *FiberControl) {
	if f.scheduler != nil && f.scheduler != s {
		invariantViolation("fiber %s already attached to a different Scheduler", f.DebugName())
	}
	f.scheduler = s
	if f.kind == KindWorker {
		s.liveWorkers++
	}
	atomic.AddInt64(&s.stats.FibersStarted, 1)
}

// MarkReady links f onto the back of the ready queue (§4.3).
func (s *Scheduler) MarkReady(f *FiberControl) {
	s.ready.pushBack(f, linkReady)
}

// ScheduleTermination links f onto the back of the terminate queue
// (§4.2/§4.3): f's stack must not be released from f's own call frame, so
// reclamation is deferred to whichever fiber later calls DestroyTerminated.
// It does not itself touch use_count — f already carries the one strong
// reference newFiberControl gave it at creation, and queue membership is
// simply that reference waiting to be dropped by DestroyTerminated. A
// collaborator that called Retain on f before it terminated holds a second
// reference, so DestroyTerminated's Release leaves f's use_count above
// zero and its stack intact until that collaborator releases its own.
func (s *Scheduler) ScheduleTermination(f *FiberControl) {
	s.terminate.pushBack(f, linkTerminate)
	atomic.AddInt64(&s.stats.FibersTerminated, 1)
	if f.kind == KindWorker {
		s.liveWorkers--
	}
}

// DestroyTerminated drains the terminate queue, dropping each member's
// creation-time strong reference via Release — which only actually frees a
// fiber's stack once its use_count reaches zero (§4.3, Q4: "destruction
// occurs exactly once"). A fiber some other collaborator Retain-ed before
// it terminated survives this pass and is destroyed later, when that
// collaborator calls Release itself. Must be called from a fiber other
// than any of the ones being destroyed — in practice, always from the
// dispatcher, between dispatch decisions (§4.4a step 2), or from MAIN
// during Close.
func (s *Scheduler) DestroyTerminated() {
	for s.terminate.Len() > 0 {
		f := s.terminate.popFront()
		if f.Release(s.active) {
			atomic.AddInt64(&s.stats.FibersDestroyed, 1)
		}
	}
}

// ProcessSleep moves every sleeper whose wake_time has passed onto the
// ready queue (§4.3), ordered earliest-first (ties broken by insertion
// order, matching sleepHeap's Less).
func (s *Scheduler) ProcessSleep(now time.Time) {
	for s.sleepQ.peekReady(now) {
		f := s.sleepQ.popReady()
		s.ready.pushBack(f, linkReady)
	}
}

// WaitUntil suspends the calling fiber until wakeUntil has passed and
// ProcessSleep moves it to the ready queue (§4.3). self must be the active
// fiber. While self is in the sleep queue, MarkReady(self) is an invariant
// violation, so nothing can wake it earlier.
func (s *Scheduler) WaitUntil(self *FiberControl, wakeUntil time.Time) {
	if self != s.active {
		invariantViolation("WaitUntil called from fiber %s which is not the active fiber", self.DebugName())
	}
	s.sleepQ.insert(self, wakeUntil)
	s.Preempt()
}

// NextWake reports the earliest pending wake_time in the sleep queue, used
// by the default dispatch loop to bound how long it may block on s.waiter
// (§4.4a step 4).
func (s *Scheduler) NextWake() (time.Time, bool) {
	if s.sleepQ.Len() == 0 {
		return time.Time{}, false
	}
	return s.sleepQ.items[0].sched.wakeTime, true
}

// RequestShutdown tells the dispatch loop to exit once no workers remain
// (§4.4a step 1's "shutdown requested" flag; §4.5 teardown).
func (s *Scheduler) RequestShutdown() {
	s.shutdown = true
	s.waiter.Wake()
}

// Active returns the fiber currently holding the baton on this thread.
func (s *Scheduler) Active() *FiberControl { return s.active }

// Main returns this Scheduler's MAIN stub fiber.
func (s *Scheduler) Main() *FiberControl { return s.main }

// Dispatcher returns this Scheduler's dispatcher fiber.
func (s *Scheduler) Dispatcher() *FiberControl { return s.dispatcher }

// Stats returns a snapshot of the scheduler's counters.
func (s *Scheduler) Stats() SchedulerStats {
	return SchedulerStats{
		FibersStarted:      atomic.LoadInt64(&s.stats.FibersStarted),
		FibersTerminated:   atomic.LoadInt64(&s.stats.FibersTerminated),
		FibersDestroyed:    atomic.LoadInt64(&s.stats.FibersDestroyed),
		ContextSwitches:    atomic.LoadInt64(&s.stats.ContextSwitches),
		DispatcherSwitches: atomic.LoadInt64(&s.stats.DispatcherSwitches),
	}
}

// Close shuts the scheduler down. It must be called from MAIN (§4.5
// teardown order — Scheduler state first, then the MAIN stub). It asks the
// dispatch loop to exit once idle and switches to the dispatcher exactly
// once: the dispatcher's own loop keeps dispatching remaining workers and
// only switches back here once shutdown is requested and no workers
// remain (§4.4a), at which point Close reclaims the dispatcher and drains
// whatever is left in the terminate queue.
func (s *Scheduler) Close() {
	if s.active != s.main {
		invariantViolation("Close called from fiber %s, not MAIN", s.active.DebugName())
	}
	s.RequestShutdown()
	s.switchTo(s.dispatcher)
	s.dispatcher.Release(s.main)
	s.DestroyTerminated()
	s.logger.Debug().Int64("fibers_started", s.stats.FibersStarted).Msg("scheduler closed")
}
