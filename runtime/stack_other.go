//go:build !unix

package runtime

// NewMmapAllocator is only meaningfully distinct from the default
// allocator on unix (see stack_unix.go); elsewhere it falls back to the
// portable heap-backed allocator rather than failing every fiber spawn on
// platforms without mmap wired up.
func NewMmapAllocator() StackAllocator { return heapAllocator{} }
