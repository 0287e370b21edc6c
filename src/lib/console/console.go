// Package console picks where diagnostic text goes: stdout, a terminal
// device (pty or usb tty) or a serial port.
package console

import (
	"bytes"
	"fmt"
	"io"
	"os"

	tty "github.com/mattn/go-tty"
	"go.bug.st/serial"
)

const DefaultBaud = 115200

type Config struct {
	TTY    string // terminal device, put in raw mode
	Serial string // serial port name
	Baud   int
}

// Open returns the sink described by c.  With nothing set, it is stdout.
// Terminal and serial sinks translate \n to \r\n as a raw line expects.
func Open(c Config) (io.WriteCloser, error) {
	switch {
	case c.TTY != "" && c.Serial != "":
		return nil, fmt.Errorf("console: pick a tty (%s) or a serial port (%s), not both", c.TTY, c.Serial)
	case c.TTY != "":
		return openTTY(c.TTY)
	case c.Serial != "":
		return openSerial(c.Serial, c.Baud)
	}
	return nopCloser{os.Stdout}, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

///////////////////////////////////////////////////////////////////////
// tty
///////////////////////////////////////////////////////////////////////
type ttySink struct {
	io      *tty.TTY
	restore func() error
}

func openTTY(path string) (io.WriteCloser, error) {
	t, err := tty.OpenDevice(path)
	if err != nil {
		return nil, fmt.Errorf("opening tty %s: %w", path, err)
	}
	return &ttySink{io: t, restore: t.MustRaw()}, nil
}

func (t *ttySink) Write(p []byte) (int, error) {
	return writeCRLF(t.io.Output(), p)
}

func (t *ttySink) Close() error {
	err := t.restore()
	if cerr := t.io.Close(); err == nil {
		err = cerr
	}
	return err
}

///////////////////////////////////////////////////////////////////////
// serial
///////////////////////////////////////////////////////////////////////
type serialSink struct {
	port serial.Port
}

func openSerial(name string, baud int) (io.WriteCloser, error) {
	if baud <= 0 {
		baud = DefaultBaud
	}
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("opening serial port %s at %d: %w", name, baud, err)
	}
	return &serialSink{port: p}, nil
}

func (s *serialSink) Write(p []byte) (int, error) {
	return writeCRLF(s.port, p)
}

func (s *serialSink) Close() error {
	return s.port.Close()
}

// Ports lists the serial ports the OS knows about.
func Ports() ([]string, error) {
	return serial.GetPortsList()
}

// writeCRLF writes p with bare \n expanded to \r\n.  The count returned is
// in terms of p, not what went on the wire.
func writeCRLF(w io.Writer, p []byte) (int, error) {
	var b bytes.Buffer
	for i, c := range p {
		if c == '\n' && (i == 0 || p[i-1] != '\r') {
			b.WriteByte('\r')
		}
		b.WriteByte(c)
	}
	if _, err := w.Write(b.Bytes()); err != nil {
		return 0, err
	}
	return len(p), nil
}
