// Package runtime implements a user-space stackful fiber scheduler for
// cooperatively multitasked lightweight threads within a single OS thread.
//
// # Architecture
//
// Five cooperating pieces, leaves-first:
//
//   - Context (context.go, stack.go) — allocates a stack and switches
//     control between a caller and a callee running on it.
//   - FiberControl (fiber.go, switch.go) — the per-fiber control block:
//     identity, state flags, reference count, and the intrusive hooks
//     that let it live in a Scheduler's ready/sleep/terminate queues.
//   - Scheduler (scheduler.go, queue.go) — per-OS-thread bookkeeping of
//     runnable, sleeping, and terminated fibers; owns the dispatcher.
//   - The dispatcher fiber (dispatcher.go) — runs whenever no worker is
//     ready, executing the default or a user-installed dispatch loop.
//   - The thread registry (registry.go) — a lazily-initialised Scheduler per
//     goroutine (Go has no OS-thread-local storage), through which the
//     active fiber and the main-fiber stub are reached.
//
// Each OS thread's scheduler is independent; there is no cross-thread
// scheduling in this package (see Waiter.Wake and the package-level
// Open Questions recorded in DESIGN.md for why that is a deliberate
// boundary, not an oversight).
package runtime
