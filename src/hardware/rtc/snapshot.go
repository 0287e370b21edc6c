package rtc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"
)

// Snapshot is a copy of every register, taken in address order.
type Snapshot struct {
	Control         uint32
	Prescaler       uint32
	Counter         uint32
	Alarm           uint32
	InterruptStatus uint32
	SecondaryStatus uint32
}

var ErrShortImage = errors.New("rtc: hex image does not cover the register block")

func (d *Device) Snapshot() Snapshot {
	return Snapshot{
		Control:         d.Control.Get(),
		Prescaler:       d.Prescaler.Get(),
		Counter:         d.Counter.Get(),
		Alarm:           d.Alarm.Get(),
		InterruptStatus: d.InterruptStatus.Get(),
		SecondaryStatus: d.SecondaryStatus.Get(),
	}
}

// Restore programs the writable registers from s.  The device goes
// through config mode so the counter is held while PSCR, CNT and ALRM
// are written; CTRL is written last.  Status registers are hardware
// owned and are not restored.
func (d *Device) Restore(s Snapshot) {
	d.EnterConfigMode()
	d.Prescaler.Set(s.Prescaler)
	d.Counter.Set(s.Counter)
	d.Alarm.Set(s.Alarm)
	d.Control.Set(s.Control)
}

func (s Snapshot) Words() []uint32 {
	return []uint32{s.Control, s.Prescaler, s.Counter, s.Alarm,
		s.InterruptStatus, s.SecondaryStatus}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("CTRL: %d PSCR: %d CNT: %d ALRM: %d ISTA: %d SSTA: %d",
		s.Control, s.Prescaler, s.Counter, s.Alarm, s.InterruptStatus, s.SecondaryStatus)
}

// WriteHex emits s as an Intel HEX image with the registers (little
// endian) placed at base.
func (s Snapshot) WriteHex(w io.Writer, base uint32) error {
	buf := make([]byte, BlockSize)
	for i, word := range s.Words() {
		binary.LittleEndian.PutUint32(buf[i*4:], word)
	}
	mem := gohex.NewMemory()
	if err := mem.AddBinary(base, buf); err != nil {
		return fmt.Errorf("building hex image: %w", err)
	}
	mem.SetStartAddress(base)
	ew := &errWriter{w: w}
	mem.DumpIntelHex(ew, 16)
	if ew.err != nil {
		return fmt.Errorf("writing hex image: %w", ew.err)
	}
	return nil
}

// errWriter keeps the first write error; gohex drops them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// ReadHex is the inverse of WriteHex.  Every byte of the register block at
// base must be present in the image.
func ReadHex(r io.Reader, base uint32) (Snapshot, error) {
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return Snapshot{}, fmt.Errorf("parsing hex image: %w", err)
	}
	buf := make([]byte, BlockSize)
	seen := make([]bool, BlockSize)
	for _, seg := range mem.GetDataSegments() {
		for i, b := range seg.Data {
			addr := seg.Address + uint32(i)
			if addr < base || addr-base >= BlockSize {
				continue
			}
			buf[addr-base] = b
			seen[addr-base] = true
		}
	}
	for _, ok := range seen {
		if !ok {
			return Snapshot{}, ErrShortImage
		}
	}
	w := func(i int) uint32 { return binary.LittleEndian.Uint32(buf[i*4:]) }
	return Snapshot{
		Control:         w(0),
		Prescaler:       w(1),
		Counter:         w(2),
		Alarm:           w(3),
		InterruptStatus: w(4),
		SecondaryStatus: w(5),
	}, nil
}
