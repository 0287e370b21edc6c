//go:build !linux && !tinygo
// +build !linux,!tinygo

package mmio

import (
	"errors"
	"runtime"
)

const DevMemPath = "/dev/mem"

var ErrNoDevMem = errors.New("mmio: /dev/mem mapping is only available on linux, not " + runtime.GOOS)

type DevMem struct{}

func OpenDevMem(path string, base uintptr, size uintptr) (*DevMem, error) {
	return nil, ErrNoDevMem
}

func (d *DevMem) Load32(offset uintptr) uint32         { return 0 }
func (d *DevMem) Store32(offset uintptr, value uint32) {}
func (d *DevMem) Close() error                         { return nil }
