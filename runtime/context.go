package runtime

// Handle is the opaque continuation threaded through a context switch
// (§4.1). An empty Handle tells the side being resumed that it is being
// resumed only so it can unwind and release its stack, never to run its
// entry function for real (§4.1, §9 "resume for destruction").
type Handle struct {
	destroy bool
}

// Empty reports whether h signals "unwind without switching back."
func (h Handle) Empty() bool { return h.destroy }

// runHandle is an ordinary, non-destroying resume.
var runHandle = Handle{}

// destroyHandle is passed to a context solely to unwind it.
var destroyHandle = Handle{destroy: true}

// Context is the machine-context primitive (component A). Go gives every
// goroutine its own growable stack and forbids manipulating its stack
// pointer directly, so a Context is a goroutine parked on an unbuffered
// channel rather than a saved register file — see SPEC_FULL.md §0 for why
// that is the idiomatic-Go rendering of this primitive rather than a
// shortcut around it. No allocation happens on the Resume path itself,
// matching §4.1's "no heap allocation per switch" requirement.
type Context struct {
	stack  Stack
	resume chan Handle
}

// NewContext allocates no new stack itself (the caller already did, via a
// StackAllocator) but records it, and starts a goroutine that immediately
// blocks waiting to be resumed for the first time. fn is called with
// whatever Handle the first Resume carries; if that handle is empty, fn
// must not be invoked at all (the context is being torn down having never
// really run) — NewContext enforces that once, centrally, so every caller
// (the worker and dispatcher trampolines in scheduler.go's Spawn and
// NewScheduler) gets it for free.
func NewContext(stack Stack, fn func(Handle)) *Context {
	ctx := &Context{stack: stack, resume: make(chan Handle)}
	go func() {
		h := <-ctx.resume
		if h.Empty() {
			return
		}
		fn(h)
	}()
	return ctx
}

// Resume hands control, and h, to the goroutine backing ctx. It does not
// block waiting for ctx to switch back out — the caller's own goroutine is
// responsible for parking on its own Context after calling Resume if it
// needs to stop running until it is resumed in turn (see Scheduler's
// switchTo in switch.go, which does exactly that).
func (c *Context) Resume(h Handle) {
	c.resume <- h
}

// Park blocks the calling goroutine until some other Context calls
// c.Resume, returning the Handle it was resumed with.
func (c *Context) Park() Handle {
	return <-c.resume
}
