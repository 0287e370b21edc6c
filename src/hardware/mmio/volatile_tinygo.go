//go:build tinygo
// +build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// Physical is a Bus over a fixed physical address, for use on the metal
// where there is no MMU mapping in the way.
type Physical uintptr

func (p Physical) Load32(offset uintptr) uint32 {
	return volatile.LoadUint32((*uint32)(unsafe.Pointer(uintptr(p) + offset)))
}

func (p Physical) Store32(offset uintptr, value uint32) {
	volatile.StoreUint32((*uint32)(unsafe.Pointer(uintptr(p)+offset)), value)
}
