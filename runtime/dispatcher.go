package runtime

import (
	"context"
	"sync/atomic"
	"time"
)

// DispatchFunc is the custom dispatch algorithm hook (§4.4, supplemented
// feature per SPEC_FULL.md §4): a host may replace the default
// round-robin loop entirely via WithDispatchLoop, the same way the
// teacher lets a caller swap in its own EventLoop.Run policy.
type DispatchFunc func(s *Scheduler)

// defaultDispatchLoop implements §4.4a: drain due sleepers and finished
// fibers, hand the baton to the next ready worker if there is one,
// otherwise block on the Waiter until a sleeper is due, an external Wake
// happens, or shutdown with no workers left lets the loop exit.
func defaultDispatchLoop(s *Scheduler) {
	for {
		now := time.Now()
		s.ProcessSleep(now)
		s.DestroyTerminated()

		if s.shutdown && s.liveWorkers == 0 && s.ready.Len() == 0 {
			return
		}

		if s.ready.Len() > 0 {
			next := s.ready.popFront()
			atomic.AddInt64(&s.stats.DispatcherSwitches, 1)
			atomic.AddInt64(&s.stats.ContextSwitches, 1)
			s.SwitchTo(s.dispatcher, next)
			continue
		}

		deadline, ok := s.NextWake()
		if !ok && s.shutdown {
			// Workers remain but none are ready and none are sleeping —
			// they must be blocked in Join on each other or on external
			// state only the host can resolve; nothing left for the
			// dispatcher to do but wait for a Wake.
			deadline = time.Time{}
		}
		_ = s.waiter.Wait(context.Background(), deadline)
	}
}

// SetCustomDispatcher installs fn as s's dispatch algorithm at runtime (§6
// boundary item 2), distinct from the construction-time WithDispatchLoop
// option: it takes effect the next time the dispatcher fiber's outer loop
// is entered (runDispatcher below calls s.dispatch fresh on every
// iteration), not the next time any worker switches control. Safe to call
// from MAIN or from within a worker fiber while the dispatcher itself is
// parked — nothing reads s.dispatch except the dispatcher's own goroutine,
// and the baton-passing discipline (§5) guarantees that goroutine isn't
// running concurrently with this call.
func (s *Scheduler) SetCustomDispatcher(fn DispatchFunc) {
	if fn == nil {
		invariantViolation("SetCustomDispatcher called with a nil DispatchFunc")
	}
	s.dispatch = fn
}

// runDispatcher is the dispatcher fiber's entry function (component D,
// §4.4). context.go's NewContext already guarantees this is only called
// at all once the dispatcher has been resumed with a non-empty handle; the
// loop here implements the two-phase lifecycle described in §4.4 step 3:
// the configured dispatch function runs until it returns (normally because
// Close requested shutdown and every worker finished), control switches
// back to MAIN, and this fiber is expected to be resumed exactly one more
// time — by Scheduler.Close's call to Release, which pulses it with the
// empty handle so it unwinds for good.
func (s *Scheduler) runDispatcher(_ Handle) {
	for {
		s.dispatch(s)
		h := s.switchTo(s.main)
		if h.Empty() {
			return
		}
	}
}
