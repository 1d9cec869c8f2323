//go:build linux

package runtime

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// eventfdWaiter backs the dispatch loop's blocking wait with a Linux
// eventfd, grounded the same way the teacher's eventloop polls a wakeup fd
// (runtime/eventloop.go, wakeup_linux.go) instead of a Go channel — useful
// to a host that wants the dispatcher's idle wait visible to an external
// epoll/kqueue-based event loop it already runs.
type eventfdWaiter struct {
	fd int
}

// NewEventfdWaiter creates a Waiter backed by a non-blocking Linux eventfd.
// Opt in with WithWaiter(w); the default Scheduler uses the portable
// channel-based Waiter instead.
func NewEventfdWaiter() (Waiter, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		return nil, fmt.Errorf("%w: eventfd: %v", ErrWaiterInit, err)
	}
	return &eventfdWaiter{fd: fd}, nil
}

func (w *eventfdWaiter) Wake() {
	buf := make([]byte, 8)
	buf[7] = 1
	_, _ = unix.Write(w.fd, buf)
}

// Wait checks ctx only before each poll: a cancellation that happens while
// poll is blocked is not seen until Wake or the deadline ends that poll,
// and with a zero deadline the poll has no timeout. Unlike chanWaiter, it
// also returns any error from poll other than EINTR.
func (w *eventfdWaiter) Wait(ctx context.Context, deadline time.Time) error {
	timeoutMs := -1
	if !deadline.IsZero() {
		d := time.Until(deadline)
		if d < 0 {
			d = 0
		}
		timeoutMs = int(d.Milliseconds())
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fds := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, timeoutMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n > 0 {
			buf := make([]byte, 8)
			_, _ = unix.Read(w.fd, buf)
		}
		return nil
	}
}

// Close releases the underlying eventfd.
func (w *eventfdWaiter) Close() error {
	return unix.Close(w.fd)
}
