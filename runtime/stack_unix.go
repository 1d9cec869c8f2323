//go:build unix

package runtime

import (
	"golang.org/x/sys/unix"
)

// mmapAllocator backs fiber stacks with anonymous mmap'd pages plus a
// no-access guard page below the arena, the same idiom the pack uses for
// its I/O machinery (eventloop's poller_linux.go/wakeup_linux.go reach for
// golang.org/x/sys/unix directly rather than a portable abstraction). It
// is opt-in via WithStackAllocator(NewMmapAllocator()); the default stays
// the plain heapAllocator in stack.go.
type mmapAllocator struct{}

// NewMmapAllocator returns a StackAllocator that reserves a guard page
// below each arena so a collaborator that does write past the usable
// region (e.g. a bug in a bounded-name encoder) faults immediately instead
// of silently corrupting adjacent memory.
func NewMmapAllocator() StackAllocator { return mmapAllocator{} }

const pageSize = 4096

func (mmapAllocator) Allocate(size int) (Stack, error) {
	if size <= 0 {
		size = DefaultStackSize
	}
	usable := roundUpPage(size)
	total := usable + pageSize

	mem, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return Stack{}, wrapAllocErr("mmap", err)
	}
	if err := unix.Mprotect(mem[:pageSize], unix.PROT_NONE); err != nil {
		_ = unix.Munmap(mem)
		return Stack{}, wrapAllocErr("mprotect guard page", err)
	}

	return Stack{Base: mem[pageSize:], Size: usable, raw: mem}, nil
}

func (mmapAllocator) Deallocate(s Stack) error {
	if s.raw == nil {
		return nil
	}
	return unix.Munmap(s.raw)
}

func roundUpPage(n int) int {
	if n%pageSize == 0 {
		return n
	}
	return n + (pageSize - n%pageSize)
}
