// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

// maxTaggedAddr is the largest pointer value the tagged pointer's 48-bit
// address field can carry. Every current amd64/arm64/riscv64 userspace
// address fits comfortably under this; it exists so a corrupted or
// foreign pointer is caught immediately instead of silently truncated
// into the counter bits.
const maxTaggedAddr = 1<<48 - 1

// checkTaggedAddr panics if addr cannot be packed into a tagged pointer
// without clobbering the counter bits. Go has no separate release build
// that strips this assertion, so it is always active.
func checkTaggedAddr(addr uintptr) {
	if uint64(addr) > maxTaggedAddr {
		panic("lfq: pointer address exceeds 48 bits, cannot be tagged")
	}
}
