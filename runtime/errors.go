package runtime

import (
	"errors"
	"fmt"
)

// ErrStackAlloc is returned by a StackAllocator when it cannot satisfy a
// request for a new fiber stack. Scheduler.Spawn and NewScheduler do not
// pass it on as an error: they panic, via invariantViolation, with a
// message that includes it.
var ErrStackAlloc = errors.New("runtime: stack allocation failed")

// ErrWaiterInit is returned by a Waiter constructor (e.g. NewEventfdWaiter)
// when it cannot acquire the OS resource backing it. Distinct from
// ErrStackAlloc (§7) so a caller doing errors.Is(err, ErrStackAlloc) to
// detect a stack allocator failure doesn't also match an unrelated waiter
// setup failure.
var ErrWaiterInit = errors.New("runtime: waiter initialization failed")

// invariantViolation panics with a consistent message. Callers in this
// package use it for programming errors — double-linking a fiber into more
// than one exclusive queue, starting a fiber twice, a fiber joining itself,
// or a fiber operating against a Scheduler it isn't attached to — and also
// for a failed stack allocation in Scheduler.Spawn and NewScheduler. There
// is no recovery path for these; the process halts.
func invariantViolation(format string, args ...any) {
	panic(fmt.Sprintf("runtime: invariant violation: "+format, args...))
}
