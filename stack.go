// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// stackNode is the LIFO node shared by Stack and AggregateFIFO: a
// payload plus a single next pointer, linked and unlinked through a
// plain-pointer CAS on the container's head — no generation counter,
// since only the goroutine whose CAS detaches a node from the chain is
// ever authorized to dereference its next link afterward (see Stack's
// doc comment). poolNext is a second, independent link used only while
// the node sits on a nodePool free list — the two links never need to
// be valid at the same time, since a node is either live in a
// container's chain or retired to its pool.
type stackNode[T any] struct {
	value    T
	next     atomix.Uintptr
	poolNext atomix.Uintptr
}

// Stack is an unbounded, lock-free last-in-first-out container. Push
// and Pull both act on a single atomic head pointer with one CAS each;
// there is no sentinel and no reclamation quarantine — a node detached
// by Pull's winning CAS can be handed straight back to the pool, since
// no other goroutine can still be dereferencing it (see nodePool's
// doc comment). head carries no generation counter: unlike FIFO's
// tagged head/tail, a stale reader here can never resurface, since the
// single CAS that unlinks a node is also the only thing ever allowed
// to touch it again.
type Stack[T any] struct {
	head atomix.Uintptr
	_    pad
	size atomix.Int64
	_    padShort
	pool *nodePool[T]
	_    padPtr

	finishWaiting atomix.Bool
}

// NewStack creates an empty Stack with default node-pool settings.
func NewStack[T any]() *Stack[T] {
	return BuildStack[T](New())
}

// BuildStack creates an empty Stack configured by b.
func BuildStack[T any](b *Builder) *Stack[T] {
	return &Stack[T]{pool: newNodePool[T](b.opts.poolPrealloc)}
}

// Push adds v to the top of the stack. A no-op once FinishWaiting(true)
// has taken effect.
func (s *Stack[T]) Push(v T) {
	if s.finishWaiting.LoadAcquire() {
		return
	}
	n := s.pool.newNode(v)
	sw := spin.Wait{}
	for {
		old := s.head.LoadRelaxed()
		n.next.StoreRelaxed(old)
		if s.head.CompareAndSwapAcqRel(old, nodeToAddr(n)) {
			break
		}
		sw.Once()
	}
	s.size.AddAcqRel(1)
}

// Pull removes and returns the most recently pushed value still
// resident, or (zero-value, false) if the stack is currently empty.
func (s *Stack[T]) Pull() (T, bool) {
	sw := spin.Wait{}
	for {
		h := s.head.LoadAcquire()
		if h == 0 {
			var zero T
			return zero, false
		}
		node := addrToNode[stackNode[T]](h)
		next := node.next.LoadRelaxed()
		if s.head.CompareAndSwapAcqRel(h, next) {
			s.size.AddAcqRel(-1)
			v := node.value
			s.pool.release(node)
			return v, true
		}
		sw.Once()
	}
}

// PullWait repeatedly calls Pull, sleeping sleep between empty
// attempts, until a value arrives or FinishWaiting(true) takes effect.
// Offered on Stack too, not only on FIFO, since the same cooperative-wait
// shape is useful to any consumer of an unbounded container.
// AggregateFIFO has no PullWait.
func (s *Stack[T]) PullWait(sleep time.Duration) (T, bool) {
	for {
		if v, ok := s.Pull(); ok {
			return v, true
		}
		if s.finishWaiting.LoadAcquire() {
			var zero T
			return zero, false
		}
		time.Sleep(sleep)
	}
}

// Empty reports whether the stack currently holds no value.
func (s *Stack[T]) Empty() bool {
	return s.size.LoadAcquire() == 0
}

// Size returns the current resident count. Advisory under concurrency.
func (s *Stack[T]) Size() int64 {
	return s.size.LoadAcquire()
}

// FinishWaiting toggles the shutdown flag: once set true, Push becomes
// a no-op and PullWait stops sleeping on an empty stack.
func (s *Stack[T]) FinishWaiting(b bool) {
	s.finishWaiting.StoreRelease(b)
}
