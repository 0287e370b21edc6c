//go:build linux && !tinygo
// +build linux,!tinygo

package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

const DevMemPath = "/dev/mem"

// DevMem is a Bus over a physical address range mapped through /dev/mem.
// This is how you reach the fabric from Linux on an FPGA SoC.
type DevMem struct {
	file  *os.File
	mem   []byte
	delta uintptr //distance from page boundary to requested base
	size  uintptr
}

// OpenDevMem maps size bytes of physical memory starting at base.  The
// mapping is shared and uncached (O_SYNC) so loads and stores reach the
// peripheral.
func OpenDevMem(path string, base uintptr, size uintptr) (*DevMem, error) {
	fp, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	page := uintptr(unix.Getpagesize())
	aligned := base &^ (page - 1)
	delta := base - aligned
	length := (delta + size + page - 1) &^ (page - 1)
	mem, err := unix.Mmap(int(fp.Fd()), int64(aligned), int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		fp.Close()
		return nil, fmt.Errorf("mapping 0x%x (+0x%x) from %s: %w", base, size, path, err)
	}
	return &DevMem{file: fp, mem: mem, delta: delta, size: size}, nil
}

func (d *DevMem) word(offset uintptr) *uint32 {
	if offset+4 > d.size || offset&3 != 0 {
		panic(fmt.Sprintf("mmio: bad offset 0x%x for a 0x%x byte window", offset, d.size))
	}
	return (*uint32)(unsafe.Pointer(&d.mem[d.delta+offset]))
}

func (d *DevMem) Load32(offset uintptr) uint32 {
	return atomic.LoadUint32(d.word(offset))
}

func (d *DevMem) Store32(offset uintptr, value uint32) {
	atomic.StoreUint32(d.word(offset), value)
}

// Close unmaps the window and closes the device file.
func (d *DevMem) Close() error {
	err := unix.Munmap(d.mem)
	d.mem = nil
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}
