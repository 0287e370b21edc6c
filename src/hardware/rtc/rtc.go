package rtc

import (
	"errors"

	"rtcbringup/src/hardware/mmio"
)

// ErrNotConfigMode is a PSCR, CNT or ALRM write attempted while the
// counter is running; the hardware drops those.
var ErrNotConfigMode = errors.New("rtc: register only writable in config mode")

// BaseAddress is where the RTC sits on the APB4 bus of the reference FPGA.
const BaseAddress = 0x10004000

// fpga: apb4_clk 50MHz, rtc_clk 6MHz
const BusClockHz = 50000000
const ClockHz = 6000000

// DefaultPrescaler divides the rtc clock by 1000000, so the counter moves
// at 6Hz.
const DefaultPrescaler = 1000000 - 1

// register offsets
const (
	OffsetCTRL = 0x00
	OffsetPSCR = 0x04
	OffsetCNT  = 0x08
	OffsetALRM = 0x0C
	OffsetISTA = 0x10
	OffsetSSTA = 0x14

	// BlockSize is the size of the register window in bytes.
	BlockSize = 0x18
)

// control register bitfields
const ControlConfigMode = 1 << 0
const ControlIncrementEnable = 1 << 1
const ControlAlarmEnable = 1 << 2
const ControlCoreEnable = 1 << 4

// control register values used by the diagnostic
const (
	ModeConfig    = ControlConfigMode
	ModeIncrement = ControlCoreEnable | ControlIncrementEnable //0b0010010
	ModeAlarm     = ControlCoreEnable | ControlAlarmEnable     //0b0010100
)

// interrupt status bitfields
const StatusIncrement = 1 << 0
const StatusAlarm = 1 << 1
const StatusMask = StatusIncrement | StatusAlarm

// secondary status bitfields
const SecondaryConfigMode = 1 << 0
const SecondaryRunning = 1 << 1

type Device struct {
	Control         mmio.Register32 //0x00
	Prescaler       mmio.Register32 //0x04
	Counter         mmio.Register32 //0x08
	Alarm           mmio.Register32 //0x0C
	InterruptStatus mmio.Register32 //0x10
	SecondaryStatus mmio.Register32 //0x14
}

// New lays the register map over b.  The bus must cover at least
// BlockSize bytes.
func New(b mmio.Bus) *Device {
	return &Device{
		Control:         mmio.NewRegister32(b, OffsetCTRL),
		Prescaler:       mmio.NewRegister32(b, OffsetPSCR),
		Counter:         mmio.NewRegister32(b, OffsetCNT),
		Alarm:           mmio.NewRegister32(b, OffsetALRM),
		InterruptStatus: mmio.NewRegister32(b, OffsetISTA),
		SecondaryStatus: mmio.NewRegister32(b, OffsetSSTA),
	}
}

// Registers returns the registers in address order.
func (d *Device) Registers() []mmio.Register32 {
	return []mmio.Register32{d.Control, d.Prescaler, d.Counter, d.Alarm,
		d.InterruptStatus, d.SecondaryStatus}
}

// EnterConfigMode holds the counter and clears every interrupt flag.
func (d *Device) EnterConfigMode() {
	d.Control.Set(ModeConfig)
}

// Start leaves config mode with the given control bits (normally
// ModeIncrement or ModeAlarm).
func (d *Device) Start(mode uint32) {
	d.Control.Set(mode &^ ControlConfigMode)
}

// SetPrescaler programs PSCR so the counter advances once every div rtc
// clock cycles.  div of zero is treated as one.
func (d *Device) SetPrescaler(div uint32) {
	if div == 0 {
		div = 1
	}
	d.Prescaler.Set(div - 1)
}

func (d *Device) Divisor() uint64 {
	return uint64(d.Prescaler.Get()) + 1
}

func (d *Device) Status() uint32 {
	return d.InterruptStatus.Get()
}

func (d *Device) IncrementIsSet() bool {
	return d.InterruptStatus.HasBits(StatusIncrement)
}

func (d *Device) AlarmIsSet() bool {
	return d.InterruptStatus.HasBits(StatusAlarm)
}

// AcknowledgeStatus writes ones to the given interrupt flags.  Hardware
// that only clears flags on entry to config mode ignores this.
func (d *Device) AcknowledgeStatus(flags uint32) {
	d.InterruptStatus.Set(flags & StatusMask)
}

// ConfigOnly reports whether writes to the register at offset are dropped
// outside config mode.
func ConfigOnly(offset uintptr) bool {
	switch offset {
	case OffsetPSCR, OffsetCNT, OffsetALRM:
		return true
	}
	return false
}

func (d *Device) ConfigModeIsSet() bool {
	return d.Control.HasBits(ControlConfigMode)
}

func (d *Device) RunningIsSet() bool {
	return d.SecondaryStatus.HasBits(SecondaryRunning)
}
