package runtime

// switchTo performs one baton pass: it resumes target's context (with the
// ordinary, non-destroying handle) and then parks the previously-active
// fiber's own context until it is resumed in turn. Every FiberControl,
// including the MAIN stub (scheduler.go's NewScheduler), has a non-nil ctx, so this one
// code path is the only place a context switch actually happens (§4.1,
// §5's "exactly one fiber per OS thread runs at a time" invariant).
func (s *Scheduler) switchTo(target *FiberControl) Handle {
	prev := s.active
	s.active = target
	target.ctx.Resume(runHandle)
	return prev.ctx.Park()
}

// Preempt (§4.3) hands control to the next runnable fiber: the head of the
// ready queue if non-empty, otherwise the dispatcher, which will itself
// decide what to do (run the default dispatch loop, process sleepers, or
// block waiting for external wake-up). It returns the Handle the calling
// fiber was eventually resumed with, which is empty only when that fiber
// is being torn down (fiber.go's Terminate, via DestroyTerminated).
func (s *Scheduler) Preempt() Handle {
	if s.ready.Len() > 0 {
		return s.switchTo(s.ready.popFront())
	}
	return s.switchTo(s.dispatcher)
}

// SwitchTo is the explicit, caller-directed form of a context switch: it
// checks that self is the active fiber and switches directly to target. It
// does not re-enqueue self; self runs again only when some later switch
// targets it (for the dispatcher, a Preempt that finds the ready queue
// empty). The default dispatch loop (dispatcher.go) uses it to hand the
// baton to the worker it has just popped from the ready queue.
func (s *Scheduler) SwitchTo(self, target *FiberControl) Handle {
	if self != s.active {
		invariantViolation("SwitchTo called from fiber %s which is not the active fiber", self.DebugName())
	}
	return s.switchTo(target)
}
