package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFiberFIFO_FIFOOrder(t *testing.T) {
	var q fiberFIFO
	a := newFiberControl(KindWorker, "a")
	b := newFiberControl(KindWorker, "b")
	c := newFiberControl(KindWorker, "c")

	q.pushBack(a, linkReady)
	q.pushBack(b, linkReady)
	q.pushBack(c, linkReady)
	require.Equal(t, 3, q.Len())

	assert.Same(t, a, q.popFront())
	assert.Same(t, b, q.popFront())
	assert.Same(t, c, q.popFront())
	assert.Nil(t, q.popFront())
	assert.Equal(t, 0, q.Len())
}

func TestFiberFIFO_DoubleLinkPanics(t *testing.T) {
	var ready, sleep fiberFIFO
	f := newFiberControl(KindWorker, "f")
	ready.pushBack(f, linkReady)
	assert.Panics(t, func() { sleep.pushBack(f, linkTerminate) })
}

func TestFiberFIFO_Unlink(t *testing.T) {
	var q fiberFIFO
	a := newFiberControl(KindWorker, "a")
	b := newFiberControl(KindWorker, "b")
	c := newFiberControl(KindWorker, "c")
	q.pushBack(a, linkReady)
	q.pushBack(b, linkReady)
	q.pushBack(c, linkReady)

	q.unlink(b)
	require.Equal(t, 2, q.Len())
	assert.Equal(t, linkNone, b.sched.kind)
	assert.Same(t, a, q.popFront())
	assert.Same(t, c, q.popFront())
}

func TestSleepHeap_OrdersByWakeTimeThenInsertionOrder(t *testing.T) {
	h := &sleepHeap{}
	now := time.Now()

	f1 := newFiberControl(KindWorker, "f1")
	f2 := newFiberControl(KindWorker, "f2")
	f3 := newFiberControl(KindWorker, "f3")

	h.insert(f1, now.Add(10*time.Millisecond))
	h.insert(f2, now.Add(5*time.Millisecond))
	h.insert(f3, now.Add(5*time.Millisecond)) // ties with f2, inserted later

	require.True(t, h.peekReady(now.Add(6*time.Millisecond)))
	assert.Same(t, f2, h.popReady()) // earlier wake_time wins
	assert.Same(t, f3, h.popReady()) // tie broken by insertion order

	require.False(t, h.peekReady(now.Add(6*time.Millisecond)))
	require.True(t, h.peekReady(now.Add(10*time.Millisecond)))
	assert.Same(t, f1, h.popReady())
	assert.Equal(t, 0, h.Len())
}

func TestSleepHeap_InsertWhileAlreadyLinkedPanics(t *testing.T) {
	h := &sleepHeap{}
	var ready fiberFIFO
	f := newFiberControl(KindWorker, "f")
	ready.pushBack(f, linkReady)
	assert.Panics(t, func() { h.insert(f, time.Now()) })
}

func TestJoinFIFO_PushPopAndDoubleLinkPanics(t *testing.T) {
	var q joinFIFO
	assert.True(t, q.empty())

	a := newFiberControl(KindWorker, "a")
	b := newFiberControl(KindWorker, "b")
	q.pushBack(a)
	q.pushBack(b)
	assert.False(t, q.empty())

	assert.Panics(t, func() { q.pushBack(a) })

	assert.Same(t, a, q.popFront())
	assert.Same(t, b, q.popFront())
	assert.True(t, q.empty())
	assert.Nil(t, q.popFront())
}
