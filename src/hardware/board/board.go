// Package board opens the register block the tools run against: the
// simulator, or the real peripheral through /dev/mem.
package board

import (
	"fmt"
	"io"

	"rtcbringup/src/hardware/mmio"
	"rtcbringup/src/hardware/rtc"
	"rtcbringup/src/hardware/rtc/sim"
	"rtcbringup/src/lib/trust"
)

const (
	BackendSim    = "sim"
	BackendDevMem = "devmem"
)

// DefaultAccessCost is rtc cycles per simulated register access: about
// twenty polls per tick at the default prescaler.
const DefaultAccessCost = 50000

type Config struct {
	Backend    string
	Base       uintptr
	DevMem     string // path, normally /dev/mem
	AccessCost uint64 // simulator only
	Realtime   bool   // simulator only: pace off the wall clock at rtc.ClockHz
	TraceLimit int    // simulator only
}

func DefaultConfig() Config {
	return Config{
		Backend:    BackendSim,
		Base:       rtc.BaseAddress,
		DevMem:     mmio.DevMemPath,
		AccessCost: DefaultAccessCost,
	}
}

// Board is an open register block.  Sim is nil unless the backend is the
// simulator.
type Board struct {
	Bus    mmio.Bus
	Sim    *sim.Peripheral
	closer io.Closer
}

func Open(c Config) (*Board, error) {
	switch c.Backend {
	case BackendSim, "":
		opts := []sim.Option{sim.WithTrace(c.TraceLimit)}
		if c.Realtime {
			opts = append(opts, sim.WithRealtime(rtc.ClockHz, nil))
		} else {
			opts = append(opts, sim.WithAccessCost(c.AccessCost))
		}
		p := sim.New(opts...)
		trust.Debugf("simulated rtc, access cost %d, realtime %v", c.AccessCost, c.Realtime)
		return &Board{Bus: p, Sim: p}, nil
	case BackendDevMem:
		d, err := mmio.OpenDevMem(c.DevMem, c.Base, rtc.BlockSize)
		if err != nil {
			return nil, err
		}
		trust.Debugf("mapped rtc at 0x%08x through %s", c.Base, c.DevMem)
		return &Board{Bus: d, closer: d}, nil
	}
	return nil, fmt.Errorf("unknown backend %q (want %s or %s)", c.Backend, BackendSim, BackendDevMem)
}

func (b *Board) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
