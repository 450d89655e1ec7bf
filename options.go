// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "unsafe"

// defaultQuarantineSize is the number of delayed-reclamation slots a
// FIFO keeps when none is requested through Builder — the value
// recommended for the bounded epoch-counter quarantine.
const defaultQuarantineSize = 512

// defaultPoolPrealloc is the number of nodes a Stack or AggregateFIFO's
// free-list pre-populates on construction, amortizing the first burst
// of Pushes against the allocator.
const defaultPoolPrealloc = 0

// Options configures the node store backing a container: how many
// nodes a free-list pool starts with, and how many delayed-reclamation
// slots a FIFO's quarantine holds.
type Options struct {
	poolPrealloc   int
	quarantineSize int
}

// Builder creates containers with fluent configuration.
//
// Builder exists because every container in this package shares the
// same node-store configuration surface; it selects no algorithm
// (there is exactly one algorithm per container) but lets callers
// tune the reclamation strategy's footprint.
//
// Example:
//
//	s := lfq.BuildStack[Event](lfq.New().PoolPrealloc(256))
//	f := lfq.BuildFIFO[Request](lfq.New().QuarantineSize(1024))
type Builder struct {
	opts Options
}

// New creates a container builder with default settings: no
// free-list preallocation, and a 512-slot FIFO quarantine.
func New() *Builder {
	return &Builder{opts: Options{
		poolPrealloc:   defaultPoolPrealloc,
		quarantineSize: defaultQuarantineSize,
	}}
}

// PoolPrealloc sets the number of nodes a Stack or AggregateFIFO's
// free-list pool allocates up front. Ignored by FIFO, which reclaims
// through the quarantine instead of a free-list.
//
// Panics if n < 0.
func (b *Builder) PoolPrealloc(n int) *Builder {
	if n < 0 {
		panic("lfq: PoolPrealloc requires n >= 0")
	}
	b.opts.poolPrealloc = n
	return b
}

// QuarantineSize sets the number of delayed-reclamation slots a FIFO's
// quarantine holds. Ignored by Stack and AggregateFIFO, which reclaim
// through a free-list instead of a quarantine.
//
// Panics if n < 1.
func (b *Builder) QuarantineSize(n int) *Builder {
	if n < 1 {
		panic("lfq: QuarantineSize requires n >= 1")
	}
	b.opts.quarantineSize = n
	return b
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte

// padPtr is padding to fill a cache line after a pointer-sized field —
// used after each container's pool pointer, which is set once at
// construction and never touched again, so it must not share a line
// with finishWaiting, a field every Push reads.
type padPtr [64 - ptrSize]byte
