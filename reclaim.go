// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// nodeArena retains every node a pool has ever allocated as a real Go
// pointer for as long as the pool itself is reachable. Everything above
// the arena — the free-list's top, the quarantine's slot pointers, and
// every taggedPointer linking nodes into a container's chain — holds a
// node's address only as a uintptr inside an atomic word. The garbage
// collector does not trace uintptrs, so without some real *N keeping a
// node reachable, it could be collected the moment its one stack-local
// pointer went out of scope, even while still linked into a container
// or parked on a free list. retain is called once per node, at the
// point of fresh allocation; a node handed out again by acquire needs
// nothing further, since the arena already holds it. evict removes a
// node once its owning pool has proven nothing can still dereference it
// (quarantinePool.retire, after a node has cycled out of the slot
// table) — without a matching evict, the arena would grow by one entry
// per node ever retired, which defeats the whole point of a bounded
// quarantine.
type nodeArena[N any] struct {
	mu    sync.Mutex
	nodes []*N
	index map[*N]int
}

func (a *nodeArena[N]) retain(n *N) {
	a.mu.Lock()
	if a.index == nil {
		a.index = make(map[*N]int)
	}
	a.index[n] = len(a.nodes)
	a.nodes = append(a.nodes, n)
	a.mu.Unlock()
}

// evict drops n from the arena, swapping in the last element to keep
// the lookup O(1). A no-op if n was already evicted or never retained.
func (a *nodeArena[N]) evict(n *N) {
	a.mu.Lock()
	idx, ok := a.index[n]
	if ok {
		last := len(a.nodes) - 1
		moved := a.nodes[last]
		a.nodes[idx] = moved
		a.index[moved] = idx
		a.nodes[last] = nil
		a.nodes = a.nodes[:last]
		delete(a.index, n)
	}
	a.mu.Unlock()
}

// size reports how many nodes the arena currently retains. Test-only.
func (a *nodeArena[N]) size() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.nodes)
}

// nodePool is the B1 reclamation strategy: a Treiber-stack free list of
// retired nodes, reused by later Pushes instead of returning to the
// allocator. It is the right fit for Stack and AggregateFIFO, whose
// nodes are only ever unlinked by a single CAS that fully detaches them
// before anything else can observe the old top — nothing else can be
// mid-dereference of a node once it's pushed back onto the pool, so
// (unlike FIFO's quarantine) a plain untagged pointer is enough here;
// no other goroutine is ever mid-traversal of a retired node's links.
type nodePool[T any] struct {
	top   atomix.Uintptr
	_     pad
	arena nodeArena[stackNode[T]]
}

func newNodePool[T any](prealloc int) *nodePool[T] {
	p := &nodePool[T]{}
	for i := 0; i < prealloc; i++ {
		n := &stackNode[T]{}
		p.arena.retain(n)
		p.release(n)
	}
	return p
}

// newNode returns a node carrying v: reused from the free list when one
// is available, or freshly allocated and retained in the arena
// otherwise. This is the only path by which Stack/AggregateFIFO obtain
// a node, so every node the container ever links in is reachable here
// for as long as the pool is.
func (p *nodePool[T]) newNode(v T) *stackNode[T] {
	if n := p.acquire(); n != nil {
		n.value = v
		n.next.StoreRelaxed(0)
		return n
	}
	n := &stackNode[T]{value: v}
	p.arena.retain(n)
	return n
}

// acquire pops a node off the free list, or returns nil if the pool is
// currently empty — the caller then allocates a fresh node itself.
func (p *nodePool[T]) acquire() *stackNode[T] {
	sw := spin.Wait{}
	for {
		old := p.top.LoadAcquire()
		if old == 0 {
			return nil
		}
		n := addrToNode[stackNode[T]](old)
		next := n.poolNext.LoadRelaxed()
		if p.top.CompareAndSwapAcqRel(old, next) {
			return n
		}
		sw.Once()
	}
}

// release pushes n back onto the free list for reuse by a later
// acquire. n must not be reachable from any other structure at the
// moment this is called.
func (p *nodePool[T]) release(n *stackNode[T]) {
	sw := spin.Wait{}
	for {
		old := p.top.LoadAcquire()
		n.poolNext.StoreRelaxed(old)
		if p.top.CompareAndSwapAcqRel(old, nodeToAddr(n)) {
			return
		}
		sw.Once()
	}
}

// quarantineSlot holds one delayed-reclamation entry: a retired node
// pointer plus a packed {generation counter, lock flag} word.
type quarantineSlot struct {
	ptr         atomix.Uintptr
	lockCounter atomix.Uint64
}

const quarantineLockBit = uint64(1) << 63

func packLockCounter(counter uint64, locked bool) uint64 {
	if locked {
		return counter | quarantineLockBit
	}
	return counter &^ quarantineLockBit
}

func unpackLockCounter(w uint64) (counter uint64, locked bool) {
	return w &^ quarantineLockBit, w&quarantineLockBit != 0
}

// quarantinePool is the B2 reclamation strategy: a fixed-size ring of
// delayed-reclamation slots used by FIFO, whose Dequeue unlinks the
// head node while a concurrent Enqueue may still hold a raw pointer to
// it mid-traversal. Instead of freeing a retired node immediately, it
// is parked in the oldest unlocked slot; whatever node was already
// resident there — having survived a full counter cycle with no slot
// free to reuse it — is either handed back out by a later acquire, or,
// if retire displaces it first, dropped from the arena so the
// collector can reclaim it.
type quarantinePool[T any] struct {
	slots          []quarantineSlot
	reclaimCounter atomix.Uint64
	arena          nodeArena[fifoNode[T]]
}

func newQuarantinePool[T any](size int) *quarantinePool[T] {
	return &quarantinePool[T]{slots: make([]quarantineSlot, size)}
}

// newNode returns a node carrying v: reused from a quarantined slot
// when one is available, or freshly allocated and retained in the
// arena otherwise. This is the only path by which FIFO obtains a node
// for Push, so every node it ever links in stays reachable here for as
// long as the pool is.
func (q *quarantinePool[T]) newNode(v T) *fifoNode[T] {
	val := new(T)
	*val = v
	if n := q.acquire(); n != nil {
		n.value = val
		n.next.store(0)
		return n
	}
	n := &fifoNode[T]{value: val}
	q.arena.retain(n)
	return n
}

// newSentinel allocates the permanent sentinel node BuildFIFO seeds
// head/tail with. Retained in the arena exactly like any other node,
// since it is linked in the very same way and is eventually retired to
// this pool once the first Pull advances head past it.
func (q *quarantinePool[T]) newSentinel() *fifoNode[T] {
	n := &fifoNode[T]{}
	q.arena.retain(n)
	return n
}

// acquire returns a node to reuse for a fresh Enqueue, taken from any
// unlocked slot currently holding a retired pointer, or nil if none is
// available (the caller then allocates a new node).
func (q *quarantinePool[T]) acquire() *fifoNode[T] {
	for i := range q.slots {
		slot := &q.slots[i]
		lc := slot.lockCounter.LoadRelaxed()
		counter, locked := unpackLockCounter(lc)
		if locked {
			continue
		}
		addr := slot.ptr.LoadRelaxed()
		if addr == 0 {
			continue
		}
		if !slot.lockCounter.CompareAndSwapAcqRel(lc, packLockCounter(counter, true)) {
			continue
		}
		reclaim := slot.ptr.LoadRelaxed()
		slot.ptr.StoreRelaxed(0)
		slot.lockCounter.StoreRelease(packLockCounter(counter, false))
		if reclaim != 0 {
			return addrToNode[fifoNode[T]](reclaim)
		}
	}
	return nil
}

// retire parks n in the oldest unlocked slot; whatever node was
// previously quarantined there is evicted from the arena (nothing is
// evicted if the slot was empty). It returns nothing, and it
// retries until some slot is found unlocked — contention here is brief
// by construction, since every lock hold is a handful of instructions.
func (q *quarantinePool[T]) retire(n *fifoNode[T]) {
	reclaimAddr := nodeToAddr(n)
	sw := spin.Wait{}
	for {
		slot := q.oldestUnlocked()
		if slot == nil {
			sw.Once()
			continue
		}
		lc := slot.lockCounter.LoadRelaxed()
		counter, locked := unpackLockCounter(lc)
		if locked {
			sw.Once()
			continue
		}
		if !slot.lockCounter.CompareAndSwapAcqRel(lc, packLockCounter(counter, true)) {
			sw.Once()
			continue
		}
		old := slot.ptr.LoadRelaxed()
		slot.ptr.StoreRelaxed(reclaimAddr)
		nextCounter := q.reclaimCounter.AddAcqRel(1)
		slot.lockCounter.StoreRelease(packLockCounter(nextCounter, false))
		if old != 0 {
			// old has now cycled a full generation out of the slot
			// table: every reader that could have held a tagged
			// pointer to it has either completed its CAS or is about
			// to fail one, so it is safe to drop from the arena and
			// let the collector reclaim it.
			q.arena.evict(addrToNode[fifoNode[T]](old))
		}
		return
	}
}

// oldestUnlocked scans for the slot with the smallest generation
// counter among those not currently locked, returning nil if every
// slot is momentarily locked by a concurrent retire/acquire.
func (q *quarantinePool[T]) oldestUnlocked() *quarantineSlot {
	var best *quarantineSlot
	var bestCounter uint64
	for i := range q.slots {
		slot := &q.slots[i]
		counter, locked := unpackLockCounter(slot.lockCounter.LoadRelaxed())
		if locked {
			continue
		}
		if best == nil || counter < bestCounter {
			best = slot
			bestCounter = counter
		}
	}
	return best
}
