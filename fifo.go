// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// fifoNode is the Michael–Scott node: a pointer to a heap-owned payload
// envelope plus a taggedPointer link. The payload is indirected through
// *T (rather than storing T inline, as stackNode does) so the node's
// layout — and therefore its place in the quarantine pool — stays fixed
// regardless of T's size; a nil value marks the sentinel.
type fifoNode[T any] struct {
	value *T
	next  taggedPointer
}

// FIFO is an unbounded, lock-free first-in-first-out queue built on the
// Michael–Scott two-lock-free-queue algorithm. Every instance always
// holds at least one sentinel node so head and tail are never nil; the
// logical first element is the node after head. Retired nodes are
// quarantined through a quarantinePool rather than freed immediately,
// which is what makes the classical algorithm's head/tail race safe
// under concurrent reclamation (see reclaim.go).
type FIFO[T any] struct {
	head taggedPointer
	_    pad
	tail taggedPointer
	_    pad
	size atomix.Int64
	_    padShort
	pool *quarantinePool[T]
	_    padPtr

	finishWaiting atomix.Bool
}

// NewFIFO creates an empty FIFO with a default 512-slot quarantine.
func NewFIFO[T any]() *FIFO[T] {
	return BuildFIFO[T](New())
}

// BuildFIFO creates an empty FIFO configured by b.
func BuildFIFO[T any](b *Builder) *FIFO[T] {
	pool := newQuarantinePool[T](b.opts.quarantineSize)
	sentinel := pool.newSentinel()
	f := &FIFO[T]{pool: pool}
	addr := nodeToAddr(sentinel)
	f.head.store(addr)
	f.tail.store(addr)
	return f
}

// Push enqueues v. A no-op once FinishWaiting(true) has taken effect.
func (f *FIFO[T]) Push(v T) {
	if f.finishWaiting.LoadAcquire() {
		return
	}
	n := f.pool.newNode(v)
	nAddr := nodeToAddr(n)
	sw := spin.Wait{}
	for {
		t := f.tail.loadRelaxed()
		tailNode := addrToNode[fifoNode[T]](t.addr)
		next := tailNode.next.loadRelaxed()
		if t != f.tail.loadAcquire() {
			sw.Once()
			continue
		}
		if next.addr == 0 {
			if tailNode.next.compareAndSwapAcqRel(next, nAddr) {
				f.tail.compareAndSwapAcqRel(t, nAddr)
				break
			}
		} else {
			f.tail.compareAndSwapAcqRel(t, next.addr)
		}
		sw.Once()
	}
	f.size.AddAcqRel(1)
}

// Pull removes and returns the value at the front of the queue, or
// (zero-value, false) if the queue is currently empty.
func (f *FIFO[T]) Pull() (T, bool) {
	sw := spin.Wait{}
	for {
		h := f.head.loadAcquire()
		t := f.tail.loadAcquire()
		headNode := addrToNode[fifoNode[T]](h.addr)
		next := headNode.next.loadAcquire()
		if h != f.head.loadAcquire() {
			sw.Once()
			continue
		}
		if h.addr == t.addr {
			if next.addr == 0 {
				var zero T
				return zero, false
			}
			f.tail.compareAndSwapAcqRel(t, next.addr)
			sw.Once()
			continue
		}
		if next.addr == 0 {
			// Structurally unreachable (h != t implies a successor
			// exists), but guarded rather than assumed.
			sw.Once()
			continue
		}
		nextNode := addrToNode[fifoNode[T]](next.addr)
		vp := nextNode.value
		if vp == nil {
			// A racing Pull already advanced head past nextNode and
			// cleared its value; h is stale, so the CAS below would fail.
			sw.Once()
			continue
		}
		val := *vp
		if f.head.compareAndSwapAcqRel(h, next.addr) {
			headNode.value = nil
			f.pool.retire(headNode)
			f.size.AddAcqRel(-1)
			return val, true
		}
		sw.Once()
	}
}

// PullWait repeatedly calls Pull, sleeping sleep between empty
// attempts, until a value arrives or FinishWaiting(true) takes effect.
func (f *FIFO[T]) PullWait(sleep time.Duration) (T, bool) {
	for {
		if v, ok := f.Pull(); ok {
			return v, true
		}
		if f.finishWaiting.LoadAcquire() {
			var zero T
			return zero, false
		}
		time.Sleep(sleep)
	}
}

// Empty reports whether the queue currently holds no value.
func (f *FIFO[T]) Empty() bool {
	return f.size.LoadAcquire() == 0
}

// Size returns the current resident count. Advisory under concurrency.
func (f *FIFO[T]) Size() int64 {
	return f.size.LoadAcquire()
}

// FinishWaiting toggles the shutdown flag: once set true, Push becomes
// a no-op and PullWait stops sleeping on an empty queue.
func (f *FIFO[T]) FinishWaiting(b bool) {
	f.finishWaiting.StoreRelease(b)
}
