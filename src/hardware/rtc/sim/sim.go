// Package sim is a cycle counted model of the RTC register block.  It
// implements mmio.Bus so the diagnostic and the register shell can run
// without an FPGA attached.
package sim

import (
	"sync"
	"time"

	"rtcbringup/src/hardware/rtc"
)

// writable control bits, everything else reads back as zero
const controlMask = rtc.ControlConfigMode | rtc.ControlIncrementEnable |
	rtc.ControlAlarmEnable | rtc.ControlCoreEnable

type Option func(*Peripheral)

// WithAccessCost makes every register access consume the given number of
// rtc clock cycles.  This is what lets a busy-wait loop make progress.
func WithAccessCost(cycles uint64) Option {
	return func(p *Peripheral) {
		p.accessCost = cycles
	}
}

// WithRealtime paces the model off the wall clock, hz rtc cycles per
// second.  now may be nil, in which case time.Now is used.
func WithRealtime(hz uint64, now func() time.Time) Option {
	return func(p *Peripheral) {
		if now == nil {
			now = time.Now
		}
		p.hz = hz
		p.now = now
		p.epoch = now()
	}
}

// WithTrace keeps the last limit counter events.
func WithTrace(limit int) Option {
	return func(p *Peripheral) {
		p.traceLimit = limit
	}
}

type Peripheral struct {
	mu sync.Mutex

	ctrl uint32
	pscr uint32
	cnt  uint32
	alrm uint32
	ista uint32

	phase    uint64 //cycles toward the next increment
	cycles   uint64
	rejected int //writes dropped because we were not in config mode

	accessCost uint64

	hz       uint64
	now      func() time.Time
	epoch    time.Time
	consumed uint64 //realtime cycles already applied

	trace      []Event
	traceLimit int
}

func New(opts ...Option) *Peripheral {
	p := &Peripheral{}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Reset puts every register back to its power on value.  Options are
// kept.
func (p *Peripheral) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ctrl, p.pscr, p.cnt, p.alrm, p.ista = 0, 0, 0, 0, 0
	p.phase = 0
	p.cycles = 0
	p.rejected = 0
	p.trace = nil
	if p.now != nil {
		p.epoch = p.now()
		p.consumed = 0
	}
}

// Advance runs the rtc clock for n cycles.
func (p *Peripheral) Advance(n uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advance(n)
}

// Cycles is the number of rtc clock cycles since reset.
func (p *Peripheral) Cycles() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cycles
}

// Rejected counts PSCR, CNT and ALRM writes that were ignored because
// the device was not in config mode.
func (p *Peripheral) Rejected() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rejected
}

func (p *Peripheral) Load32(offset uintptr) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catchUp()
	var v uint32
	switch offset {
	case rtc.OffsetCTRL:
		v = p.ctrl
	case rtc.OffsetPSCR:
		v = p.pscr
	case rtc.OffsetCNT:
		v = p.cnt
	case rtc.OffsetALRM:
		v = p.alrm
	case rtc.OffsetISTA:
		v = p.ista
	case rtc.OffsetSSTA:
		if p.ctrl&rtc.ControlConfigMode != 0 {
			v |= rtc.SecondaryConfigMode
		}
		if p.running() {
			v |= rtc.SecondaryRunning
		}
	}
	p.advance(p.accessCost)
	return v
}

func (p *Peripheral) Store32(offset uintptr, value uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.catchUp()
	switch offset {
	case rtc.OffsetCTRL:
		if value&rtc.ControlConfigMode != 0 {
			p.ista = 0
			p.phase = 0
		}
		p.ctrl = value & controlMask
	case rtc.OffsetPSCR:
		p.configWrite(&p.pscr, value)
	case rtc.OffsetCNT:
		p.configWrite(&p.cnt, value)
	case rtc.OffsetALRM:
		p.configWrite(&p.alrm, value)
	case rtc.OffsetISTA:
		p.ista &^= value
	}
	p.advance(p.accessCost)
}

func (p *Peripheral) configWrite(reg *uint32, value uint32) {
	if p.ctrl&rtc.ControlConfigMode == 0 {
		p.rejected++
		return
	}
	*reg = value
}

func (p *Peripheral) running() bool {
	return p.ctrl&rtc.ControlConfigMode == 0 && p.ctrl&rtc.ControlCoreEnable != 0
}

// catchUp applies wall clock time when pacing in realtime.
func (p *Peripheral) catchUp() {
	if p.now == nil || p.hz == 0 {
		return
	}
	d := p.now().Sub(p.epoch)
	if d < 0 {
		return
	}
	secs := uint64(d / time.Second)
	nanos := uint64(d % time.Second)
	target := secs*p.hz + nanos*p.hz/uint64(time.Second)
	if target > p.consumed {
		p.advance(target - p.consumed)
		p.consumed = target
	}
}

func (p *Peripheral) advance(n uint64) {
	if n == 0 {
		return
	}
	p.cycles += n
	if !p.running() {
		return
	}
	div := uint64(p.pscr) + 1
	total := p.phase + n
	ticks := total / div
	p.phase = total % div
	if ticks == 0 {
		return
	}
	old := p.cnt
	p.cnt = old + uint32(ticks)
	if p.ctrl&rtc.ControlIncrementEnable != 0 {
		p.ista |= rtc.StatusIncrement
	}
	if p.ctrl&rtc.ControlAlarmEnable != 0 {
		//distance, counting forward with wrap, from where we were to the alarm
		dist := uint64(p.alrm - old)
		if dist == 0 {
			dist = 1 << 32
		}
		if dist <= ticks {
			p.ista |= rtc.StatusAlarm
		}
	}
	p.record(Event{Cycle: p.cycles - p.phase, Counter: p.cnt, Status: p.ista})
}
