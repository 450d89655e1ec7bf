// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "time"

// Pusher enqueues values into a container.
//
// Push never blocks and never fails under normal operation: the
// containers in this package are unbounded, so the only way Push can
// fail to make progress is an allocator fault, which propagates as a
// runtime panic rather than a returned error.
type Pusher[T any] interface {
	// Push adds v to the container. If FinishWaiting(true) was called
	// first, Push is a no-op — see Container.FinishWaiting.
	Push(v T)
}

// Puller removes and returns a single value from a container.
//
// Pull never blocks. Its boolean result is the only outcome signal:
// true means the returned value was actually resident in the container,
// false means the container had nothing to return. There is no error
// return — there are no recoverable error codes for this core.
type Puller[T any] interface {
	// Pull removes and returns one previously-pushed value, or
	// (zero-value, false) if nothing is currently resident.
	Pull() (T, bool)
}

// Waiter is implemented by containers offering a cooperative, sleeping
// pull that retries until a value arrives or the container is told to
// stop waiting.
type Waiter[T any] interface {
	// PullWait repeatedly calls Pull, sleeping sleep between attempts,
	// until a value is returned or FinishWaiting(true) takes effect —
	// in which case it returns (zero-value, false) without blocking
	// further.
	PullWait(sleep time.Duration) (T, bool)
}

// Container is the observable surface shared by Stack, AggregateFIFO,
// and FIFO: push plus the advisory bookkeeping operations every
// container in this package implements.
type Container[T any] interface {
	Pusher[T]

	// Empty reports whether the container currently holds no value.
	// Advisory under concurrency — see Size.
	Empty() bool

	// Size returns the current resident count. Advisory: a racing
	// Pull/Push can make the observed value stale by the time the
	// caller acts on it, and Size() == 0 does not imply Empty() at the
	// same instant. The counter itself is acquire/release ordered
	// rather than fully relaxed (see DESIGN.md) so it never observes a
	// transiently negative value.
	Size() int64

	// FinishWaiting toggles the shutdown flag. Once set to true,
	// further Push calls become no-ops and Waiter.PullWait returns
	// immediately on an empty container instead of sleeping. It does
	// not itself drain or block — the caller drains with Pull/PullWait
	// as usual.
	FinishWaiting(bool)
}
