package runtime

import "github.com/rs/zerolog"

// Option configures a Scheduler at construction time, the same functional-
// options idiom the teacher and the rest of the pack use throughout
// (logiface-zerolog's With... constructors, recera-vango's App options).
type Option func(*Scheduler)

// WithStackSize overrides the default size (DefaultStackSize) new worker
// stacks are allocated with.
func WithStackSize(size int) Option {
	return func(s *Scheduler) {
		if size > 0 {
			s.stackSize = size
		}
	}
}

// WithStackAllocator overrides the default heap-backed StackAllocator, for
// example with NewMmapAllocator() to get guard-paged stacks on unix.
func WithStackAllocator(a StackAllocator) Option {
	return func(s *Scheduler) {
		if a != nil {
			s.allocator = a
		}
	}
}

// WithDispatchLoop installs a custom dispatch algorithm (§4.4, supplemented
// feature) in place of defaultDispatchLoop.
func WithDispatchLoop(fn DispatchFunc) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.dispatch = fn
		}
	}
}

// WithWaiter overrides the default channel-based Waiter, for example with
// NewEventfdWaiter() on Linux.
func WithWaiter(w Waiter) Option {
	return func(s *Scheduler) {
		if w != nil {
			s.waiter = w
		}
	}
}

// WithLogger overrides the package default logger (log.go) for one
// Scheduler.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) {
		s.logger = l
	}
}
