// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Batch is the move-only handle AggregateFIFO.Pull hands back: a
// FIFO-ordered view over one atomically detached backlog of pushes.
// It is single-threaded by construction — once detached, nothing else
// holds a reference to its nodes, so no further synchronization is
// needed to iterate it.
type Batch[T any] struct {
	head *stackNode[T]
	pool *nodePool[T]
}

// Pull returns the next value in the batch in FIFO (push) order, or
// (zero-value, false) once the batch is exhausted.
func (b *Batch[T]) Pull() (T, bool) {
	if b.head == nil {
		var zero T
		return zero, false
	}
	n := b.head
	b.head = addrToNode[stackNode[T]](n.next.LoadRelaxed())
	v := n.value
	if b.pool != nil {
		b.pool.release(n)
	}
	return v, true
}

// Empty reports whether the batch has been fully drained.
func (b *Batch[T]) Empty() bool {
	return b.head == nil
}

// Close releases any nodes remaining in the batch back to the
// container's pool without returning their values — the Go rendering
// of "its drop releases remaining nodes" now that there is no
// destructor to do it implicitly.
func (b *Batch[T]) Close() {
	for !b.Empty() {
		b.Pull()
	}
}

// AggregateFIFO is an unbounded multi-push / single-detach container:
// producers Push one value at a time, like Stack; a consumer's Pull
// atomically detaches the entire backlog accumulated since the last
// detach and hands it back as one FIFO-ordered Batch.
type AggregateFIFO[T any] struct {
	head atomix.Uintptr
	_    pad
	size atomix.Int64
	_    padShort
	pool *nodePool[T]
	_    padPtr

	finishWaiting atomix.Bool
}

// NewAggregateFIFO creates an empty AggregateFIFO with default
// node-pool settings.
func NewAggregateFIFO[T any]() *AggregateFIFO[T] {
	return BuildAggregateFIFO[T](New())
}

// BuildAggregateFIFO creates an empty AggregateFIFO configured by b.
func BuildAggregateFIFO[T any](b *Builder) *AggregateFIFO[T] {
	return &AggregateFIFO[T]{pool: newNodePool[T](b.opts.poolPrealloc)}
}

// Push adds v to the backlog. Identical protocol to Stack.Push — the
// two containers share the same push side and differ only in how
// Pull detaches the chain. A no-op once FinishWaiting(true) has taken
// effect.
func (a *AggregateFIFO[T]) Push(v T) {
	if a.finishWaiting.LoadAcquire() {
		return
	}
	n := a.pool.newNode(v)
	sw := spin.Wait{}
	for {
		old := a.head.LoadRelaxed()
		n.next.StoreRelaxed(old)
		if a.head.CompareAndSwapAcqRel(old, nodeToAddr(n)) {
			break
		}
		sw.Once()
	}
	a.size.AddAcqRel(1)
}

// Pull atomically detaches the entire current backlog and returns it
// as a FIFO-ordered Batch. Returns (nil, false) if the backlog is
// currently empty — a subsequent Push racing this call lands in the
// next detach, never in the one returned here or lost.
func (a *AggregateFIFO[T]) Pull() (*Batch[T], bool) {
	sw := spin.Wait{}
	var h uintptr
	for {
		h = a.head.LoadRelaxed()
		if h == 0 {
			return nil, false
		}
		if a.head.CompareAndSwapAcqRel(h, 0) {
			break
		}
		sw.Once()
	}

	count := int64(0)
	lifoHead := addrToNode[stackNode[T]](h)
	for n := lifoHead; n != nil; n = addrToNode[stackNode[T]](n.next.LoadRelaxed()) {
		count++
	}
	a.size.AddAcqRel(-count)

	return &Batch[T]{head: reverseChain(lifoHead), pool: a.pool}, true
}

// reverseChain reverses a LIFO-ordered singly linked chain of
// stackNode in place and returns the new head, turning push order
// into pull order. Kept as a free function rather than a method,
// matching its shape in the algorithm this detach logic is modeled on.
func reverseChain[T any](head *stackNode[T]) *stackNode[T] {
	var prev *stackNode[T]
	cur := head
	for cur != nil {
		next := addrToNode[stackNode[T]](cur.next.LoadRelaxed())
		cur.next.StoreRelaxed(nodeToAddr(prev))
		prev = cur
		cur = next
	}
	return prev
}

// Empty reports whether the backlog currently holds no value.
func (a *AggregateFIFO[T]) Empty() bool {
	return a.size.LoadAcquire() == 0
}

// Size returns the current resident count. Advisory under concurrency.
func (a *AggregateFIFO[T]) Size() int64 {
	return a.size.LoadAcquire()
}

// FinishWaiting toggles the shutdown flag: once set true, Push becomes
// a no-op.
func (a *AggregateFIFO[T]) FinishWaiting(b bool) {
	a.finishWaiting.StoreRelease(b)
}
