package runtime

import (
	"container/heap"
	"time"
)

// linkKind identifies which of the Scheduler's three mutually exclusive
// queues a fiber is currently linked into, enforcing §3 invariant 3 ("a
// fiber is linked into at most one of ready/sleep/terminate at any time")
// structurally: there is exactly one kind field, so a fiber cannot be
// double-linked without an explicit bug in this package's own queue code,
// and every link helper below (fiberFIFO.pushBack, sleepHeap.insert)
// asserts it; the unlink helpers do not check it.
type linkKind int8

const (
	linkNone linkKind = iota
	linkReady
	linkSleep
	linkTerminate
)

// schedHook is the intrusive node backing ready_queue and terminate_queue
// membership (a FIFO, via prev/next) and, when kind == linkSleep,
// sleep_queue membership (an ordered heap, via heapIndex/seq). One set of
// fields serves all three because they are mutually exclusive — the same
// trick the teacher's FiberQueue/TimerHeap each use a single index field
// for, generalised across three queues instead of one.
type schedHook struct {
	kind linkKind

	prev, next *FiberControl // valid when kind == linkReady || kind == linkTerminate

	wakeTime  time.Time // valid when kind == linkSleep
	heapIndex int       // valid when kind == linkSleep
	seq       uint64    // insertion order, ties broken by this (§4.3 ProcessSleep)
}

// fiberFIFO is an intrusive FIFO over schedHook.prev/next, used for both
// ready_queue and terminate_queue (§3, §4.3).
type fiberFIFO struct {
	head, tail *FiberControl
	length     int
}

func (q *fiberFIFO) pushBack(f *FiberControl, kind linkKind) {
	if f.sched.kind != linkNone {
		invariantViolation("fiber %s already linked in queue kind=%d, cannot link as kind=%d", f.DebugName(), f.sched.kind, kind)
	}
	f.sched.kind = kind
	f.sched.prev = q.tail
	f.sched.next = nil
	if q.tail != nil {
		q.tail.sched.next = f
	} else {
		q.head = f
	}
	q.tail = f
	q.length++
}

func (q *fiberFIFO) popFront() *FiberControl {
	f := q.head
	if f == nil {
		return nil
	}
	q.unlink(f)
	return f
}

func (q *fiberFIFO) unlink(f *FiberControl) {
	if f.sched.prev != nil {
		f.sched.prev.sched.next = f.sched.next
	} else {
		q.head = f.sched.next
	}
	if f.sched.next != nil {
		f.sched.next.sched.prev = f.sched.prev
	} else {
		q.tail = f.sched.prev
	}
	f.sched.prev, f.sched.next = nil, nil
	f.sched.kind = linkNone
	q.length--
}

func (q *fiberFIFO) Len() int { return q.length }

// sleepHeap orders fibers by wake_time (ties by insertion sequence),
// implementing container/heap.Interface exactly the way the teacher's
// TimerHeap (runtime/eventloop.go) orders *TimerTask by Deadline.
type sleepHeap struct {
	items []*FiberControl
	seq   uint64
}

func (h *sleepHeap) Len() int { return len(h.items) }

func (h *sleepHeap) Less(i, j int) bool {
	wi, wj := h.items[i].sched.wakeTime, h.items[j].sched.wakeTime
	if wi.Equal(wj) {
		return h.items[i].sched.seq < h.items[j].sched.seq
	}
	return wi.Before(wj)
}

func (h *sleepHeap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].sched.heapIndex = i
	h.items[j].sched.heapIndex = j
}

func (h *sleepHeap) Push(x any) {
	f := x.(*FiberControl)
	f.sched.heapIndex = len(h.items)
	h.items = append(h.items, f)
}

func (h *sleepHeap) Pop() any {
	n := len(h.items)
	f := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	f.sched.heapIndex = -1
	return f
}

// insert links f into the sleep queue ordered by wakeUntil, per §4.3
// WaitUntil.
func (h *sleepHeap) insert(f *FiberControl, wakeUntil time.Time) {
	if f.sched.kind != linkNone {
		invariantViolation("fiber %s already linked in queue kind=%d, cannot sleep", f.DebugName(), f.sched.kind)
	}
	h.seq++
	f.sched.kind = linkSleep
	f.sched.wakeTime = wakeUntil
	f.sched.seq = h.seq
	heap.Push(h, f)
}

// peekReady reports whether the earliest sleeper's wake_time has passed.
func (h *sleepHeap) peekReady(now time.Time) bool {
	return h.Len() > 0 && !h.items[0].sched.wakeTime.After(now)
}

// popReady removes and returns the earliest sleeper, clearing its link
// state back to linkNone (the caller, ProcessSleep, immediately re-links it
// into the ready queue).
func (h *sleepHeap) popReady() *FiberControl {
	f := heap.Pop(h).(*FiberControl)
	f.sched.kind = linkNone
	return f
}

// waitHook links a fiber onto the wait_queue of the fiber it has joined.
// Independent of schedHook (§3: "independently in at most one wait-queue"):
// a fiber can simultaneously be absent from ready/sleep/terminate (it is
// blocked in Join) while linked here.
type waitHook struct {
	linked     bool
	prev, next *FiberControl
}

// joinFIFO is the intrusive FIFO of joiners waiting on one fiber's
// termination, drained front-to-back by Terminate (§4.2, §5 ordering
// guarantees).
type joinFIFO struct {
	head, tail *FiberControl
}

func (q *joinFIFO) pushBack(f *FiberControl) {
	if f.wait.linked {
		invariantViolation("fiber %s already linked in a wait queue", f.DebugName())
	}
	f.wait.linked = true
	f.wait.prev = q.tail
	f.wait.next = nil
	if q.tail != nil {
		q.tail.wait.next = f
	} else {
		q.head = f
	}
	q.tail = f
}

func (q *joinFIFO) popFront() *FiberControl {
	f := q.head
	if f == nil {
		return nil
	}
	q.head = f.wait.next
	if q.head != nil {
		q.head.wait.prev = nil
	} else {
		q.tail = nil
	}
	f.wait.next = nil
	f.wait.linked = false
	return f
}

func (q *joinFIFO) empty() bool { return q.head == nil }
