// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// tagCounterBits is the width of the ABA counter packed alongside an
// address in a taggedPointer. 16 bits gives 65536 distinct generations
// per address slot before the counter wraps — ample for the CAS-retry
// windows these containers operate under.
const tagCounterBits = 16

// tagged is the unpacked value carried by a taggedPointer: a node
// address plus the generation counter observed alongside it.
type tagged struct {
	addr    uintptr
	counter uint16
}

// packTagged folds addr and counter into the single word a
// taggedPointer's CAS operates on.
func packTagged(addr uintptr, counter uint16) uint64 {
	checkTaggedAddr(addr)
	return uint64(addr)<<tagCounterBits | uint64(counter)
}

// unpackTagged splits a packed word back into its address and counter.
func unpackTagged(w uint64) tagged {
	return tagged{
		addr:    uintptr(w >> tagCounterBits),
		counter: uint16(w & (1<<tagCounterBits - 1)),
	}
}

// taggedPointer is a single-word {address, generation counter} pair,
// compare-and-swapped atomically as one unit. It is the mechanism that
// lets FIFO's head and tail detect and reject a stale pointer that coincidentally matches a freed-and-reused node's
// address (the ABA problem) without any out-of-band epoch mechanism.
//
// taggedPointer carries no type information about what it points to —
// callers convert to and from *Node via nodeToAddr/addrToNode helpers
// parameterized on the payload type, matching the generic treatment
// every other component in this package gives T.
type taggedPointer struct {
	word atomix.Uint64
}

// store initializes the tagged pointer to addr with counter 0. Used
// only during construction, before the pointer is published to other
// goroutines.
func (tp *taggedPointer) store(addr uintptr) {
	tp.word.StoreRelaxed(packTagged(addr, 0))
}

// loadAcquire returns the current {address, counter} pair with
// acquire ordering, establishing a happens-before edge with whatever
// store last published it.
func (tp *taggedPointer) loadAcquire() tagged {
	return unpackTagged(tp.word.LoadAcquire())
}

// loadRelaxed is loadAcquire without the ordering guarantee, for
// speculative reads that will be validated by a subsequent CAS.
func (tp *taggedPointer) loadRelaxed() tagged {
	return unpackTagged(tp.word.LoadRelaxed())
}

// compareAndSwapAcqRel atomically replaces old with {newAddr,
// old.counter+1} if and only if the word still holds old's packed
// value. Bumping the counter on every successful swap, rather than
// only when an address repeats, is what makes the pair ABA-proof: two
// swaps that both move the pointer to the same address never produce
// the same packed word.
func (tp *taggedPointer) compareAndSwapAcqRel(old tagged, newAddr uintptr) bool {
	return tp.word.CompareAndSwapAcqRel(packTagged(old.addr, old.counter), packTagged(newAddr, old.counter+1))
}

// nodeToAddr converts a typed node pointer to the uintptr a
// taggedPointer stores. A nil pointer maps to address 0.
//
// The uintptr produced here is opaque to the garbage collector: once a
// node's address is packed into a taggedPointer word (or a
// quarantineSlot's ptr field), that word is the node's only link for
// the purposes of the lock-free protocol, but it does nothing to keep
// the node reachable. Every node this module hands out is therefore
// also retained as a real *N in its owning pool's nodeArena
// (reclaim.go) for as long as the pool lives, so nodeToAddr/addrToNode
// round-trip a node's identity for the CAS protocol while the arena —
// not this conversion — is what keeps the collector from reclaiming it
// early.
func nodeToAddr[N any](n *N) uintptr {
	return uintptr(unsafe.Pointer(n))
}

// addrToNode converts a taggedPointer's address back to a typed node
// pointer. Address 0 maps to nil. See nodeToAddr for why this
// conversion is safe only because every live node is independently
// retained elsewhere.
func addrToNode[N any](addr uintptr) *N {
	return (*N)(unsafe.Pointer(addr))
}
