// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfq provides unbounded lock-free in-process containers for
// multi-producer / multi-consumer message passing between goroutines.
//
// Three container families are offered:
//
//   - [Stack]: last-in-first-out, single atomic CAS on push and pull.
//   - [AggregateFIFO]: producers push one value at a time; a consumer
//     atomically detaches the entire backlog as one FIFO-ordered [Batch].
//   - [FIFO]: first-in-first-out, Michael–Scott two-lock-free-queue
//     algorithm with a quarantine-based reclamation scheme that makes
//     the head/tail race safe under concurrent readers.
//
// # Quick Start
//
//	s := lfq.NewStack[Event]()
//	s.Push(ev)
//	v, ok := s.Pull()
//
//	a := lfq.NewAggregateFIFO[Event]()
//	a.Push(ev)
//	batch, ok := a.Pull()
//	for !batch.Empty() {
//	    v, _ := batch.Pull()
//	    process(v)
//	}
//
//	f := lfq.NewFIFO[Request]()
//	f.Push(req)
//	req, ok := f.Pull()
//
// # Ordering
//
// Stack gives last-writer-wins order: there is no cross-producer order
// guarantee. AggregateFIFO preserves real-time push order within each
// detached batch. FIFO preserves global first-in-first-out order across
// all producers.
//
// # Shutdown
//
// Every container carries a FinishWaiting flag. Once
// FinishWaiting(true) is called, further Push calls become no-ops and
// [Waiter.PullWait] returns immediately on an empty container instead
// of sleeping — letting the goroutine that toggled the flag drain
// without racing new arrivals. Pull itself still returns any values
// already resident.
//
// # Configuration
//
// [Builder] configures the node store backing a container: free-list
// preallocation for Stack/AggregateFIFO, and quarantine slot count for
// FIFO. [New] returns sensible defaults; direct constructors
// ([NewStack], [NewAggregateFIFO], [NewFIFO]) call it for you.
//
//	s := lfq.BuildStack[Event](lfq.New().PoolPrealloc(256))
//	f := lfq.BuildFIFO[Request](lfq.New().QuarantineSize(1024))
//
// [NewStack] and [NewFIFO] take no arguments and use the defaults;
// [BuildStack], [BuildAggregateFIFO], and [BuildFIFO] take a *Builder.
//
// # Safe Reclamation
//
// Stack and AggregateFIFO retire nodes to a private free-list
// ([nodePool]): the winning CAS that detaches a node is the only
// goroutine that can still be dereferencing it, so plain reuse is
// sufficient. FIFO retires nodes through a bounded quarantine pool
// ([quarantinePool]) of generation-counted slots: a retired node is
// parked in a slot rather than freed. A later Push may take it back out
// of its slot for reuse at any time; otherwise it stays parked until a
// retire into that slot, which takes the slot with the oldest
// generation, displaces it. Parking instead of freeing is what defeats
// the classical Michael–Scott algorithm's use-after-free under
// concurrent dequeues.
//
// # Thread Safety
//
// All operations on all three containers are safe for any number of
// concurrent goroutines calling Push and Pull. A container instance
// must not be copied after first use; share it by pointer.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channels, WaitGroup) but cannot observe happens-before relationships
// established purely through atomic memory orderings. The CAS loops in
// this package establish their happens-before edges through
// [code.hybscloud.com/atomix]'s acquire/release operations on
// independent fields, which the detector does not model — individual
// tests whose correctness depends on that ordering check [RaceEnabled]
// and call t.Skip under a race build instead of running with a false
// positive.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomic primitives
// with explicit memory ordering and [code.hybscloud.com/spin] for CAS
// retry backoff. [code.hybscloud.com/iox] is used by this package's
// tests for polling helpers, not by product code — none of these
// containers can fail in a way that needs a semantic error type.
package lfq
