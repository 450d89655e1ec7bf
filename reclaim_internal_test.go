// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import "testing"

func TestNodePoolAcquireEmpty(t *testing.T) {
	p := newNodePool[int](0)
	if n := p.acquire(); n != nil {
		t.Fatalf("acquire() on an empty pool returned %v, want nil", n)
	}
}

func TestNodePoolReleaseThenAcquireReuses(t *testing.T) {
	p := newNodePool[int](0)
	n := &stackNode[int]{value: 7}
	p.release(n)

	got := p.acquire()
	if got != n {
		t.Fatalf("acquire() = %p, want the released node %p", got, n)
	}
	if p.acquire() != nil {
		t.Fatal("second acquire() on a pool with one release returned non-nil")
	}
}

func TestNodePoolPreallocSeedsFreeList(t *testing.T) {
	p := newNodePool[int](4)
	count := 0
	for p.acquire() != nil {
		count++
	}
	if count != 4 {
		t.Fatalf("acquired %d preallocated nodes, want 4", count)
	}
}

func TestQuarantinePoolAcquireEmpty(t *testing.T) {
	q := newQuarantinePool[int](4)
	if n := q.acquire(); n != nil {
		t.Fatalf("acquire() on a fresh quarantine pool returned %v, want nil", n)
	}
}

func TestQuarantinePoolRetireThenAcquire(t *testing.T) {
	q := newQuarantinePool[int](4)
	n := &fifoNode[int]{}
	q.retire(n)

	got := q.acquire()
	if got != n {
		t.Fatalf("acquire() = %p, want the retired node %p", got, n)
	}
}

// TestQuarantinePoolMultipleRetires checks that acquire keeps returning
// a node, never nil, as retires and acquires interleave on a 2-slot
// table — including the third retire, which must land in whichever slot
// holds the oldest generation (here the slot the first acquire emptied)
// rather than deadlocking or skipping a slot. No node is displaced from
// the table in this sequence; TestQuarantinePoolRetireBoundsArenaSize
// covers displacement.
func TestQuarantinePoolMultipleRetires(t *testing.T) {
	q := newQuarantinePool[int](2)
	n1 := &fifoNode[int]{}
	n2 := &fifoNode[int]{}
	n3 := &fifoNode[int]{}

	q.retire(n1) // slot A <- n1, counter 1
	q.retire(n2) // slot B <- n2, counter 2

	// Both slots now hold a retired node; acquire must return one of
	// them, never nil.
	got := q.acquire()
	if got != n1 && got != n2 {
		t.Fatalf("acquire() = %p, want n1 or n2", got)
	}

	// Retiring a third node must go into whichever slot has the oldest
	// generation (slot A, counter 1, emptied by the acquire above), so a
	// second acquire again finds a node.
	q.retire(n3)
	second := q.acquire()
	if second == nil {
		t.Fatal("second acquire() returned nil with two prior retires")
	}
}

// TestQuarantinePoolRetireBoundsArenaSize retires one more node than
// the slot table has room for and checks that the arena's retained-node
// count settles back down to the table size rather than growing by one
// with every retire — the displaced node must actually be dropped from
// the arena, not merely overwritten in the slot table.
func TestQuarantinePoolRetireBoundsArenaSize(t *testing.T) {
	const size = 4
	q := newQuarantinePool[int](size)

	nodes := make([]*fifoNode[int], size+1)
	for i := range nodes {
		nodes[i] = q.newNode(i)
	}
	if got := q.arena.size(); got != size+1 {
		t.Fatalf("arena.size() after %d newNode calls = %d, want %d", size+1, got, size+1)
	}

	for _, n := range nodes {
		q.retire(n)
	}

	if got := q.arena.size(); got != size {
		t.Fatalf("arena.size() after retiring %d nodes into a %d-slot table = %d, want %d (bounded, not growing with every retire)", size+1, size, got, size)
	}
}
