// Package rtcpoke is a peek/poke shell for the RTC register block.  It
// reads one command per line, so it works the same typed at a terminal or
// fed a bring-up script.
package rtcpoke

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"rtcbringup/src/hardware/mmio"
	"rtcbringup/src/hardware/rtc"
	"rtcbringup/src/lib/trust"
	"rtcbringup/src/tools/sysdec"
)

const defaultWaitPolls = 1000000

var ErrNotSimulated = errors.New("only the simulator has a clock to advance")
var ErrUsage = errors.New("usage")
var ErrWaitExhausted = errors.New("register never showed the value")

// Clock is implemented by backends whose time can be stepped by hand.
type Clock interface {
	Advance(cycles uint64)
}

type Shell struct {
	bus    mmio.Bus
	dev    *rtc.Device
	layout *sysdec.Binding
	clock  Clock
	out    io.Writer
	prompt string
}

// New builds a shell over bus.  If the bus is also a Clock, the advance
// command is available.
func New(bus mmio.Bus, layout *sysdec.Binding, out io.Writer) *Shell {
	s := &Shell{
		bus:    bus,
		dev:    rtc.New(bus),
		layout: layout,
		out:    out,
	}
	if c, ok := bus.(Clock); ok {
		s.clock = c
	}
	return s
}

// SetPrompt turns on a prompt before each line, for interactive use.
func (s *Shell) SetPrompt(p string) {
	s.prompt = p
}

// Run executes lines from r until EOF or quit.  Errors from a command are
// printed and the shell carries on; only read errors end it early.
func (s *Shell) Run(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for {
		if s.prompt != "" {
			fmt.Fprint(s.out, s.prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		quit, err := s.Execute(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "!%v\n", err)
			trust.Debugf("command %q: %v", scanner.Text(), err)
		}
		if quit {
			return nil
		}
	}
}

// Execute runs one command line.
func (s *Shell) Execute(line string) (bool, error) {
	args, err := shlex.Split(line)
	if err != nil {
		return false, fmt.Errorf("bad line %q: %w", line, err)
	}
	if len(args) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(args[0]), args[1:]
	switch cmd {
	case "quit", "exit":
		return true, nil
	case "help", "?":
		s.help()
	case "read", "r":
		return false, s.read(args)
	case "write", "w":
		return false, s.write(args)
	case "dump", "d":
		s.dump()
	case "decode":
		return false, s.decode(args)
	case "wait":
		return false, s.wait(args)
	case "advance", "a":
		return false, s.advance(args)
	case "save":
		return false, s.save(args)
	case "load":
		return false, s.load(args)
	default:
		return false, fmt.Errorf("unknown command %q, try help", cmd)
	}
	return false, nil
}

func (s *Shell) help() {
	fmt.Fprint(s.out, `read REG             read a register (name or offset)
write REG VALUE      write a register
dump                 read every register
decode REG [VALUE]   show the fields of a register
wait REG VALUE [N]   poll until REG reads VALUE, at most N reads
advance CYCLES       step the simulated rtc clock
save FILE            write the registers as intel hex
load FILE            program the registers from intel hex
quit
`)
}

func (s *Shell) register(name string) (*sysdec.RegisterDef, mmio.Register32, error) {
	def, err := s.layout.Lookup(name)
	if err != nil {
		return nil, mmio.Register32{}, err
	}
	return def, mmio.NewRegister32(s.bus, uintptr(def.AddressOffset)), nil
}

func parseValue(v string) (uint32, error) {
	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad value %q: %w", v, err)
	}
	return uint32(n), nil
}

func (s *Shell) read(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: read REG", ErrUsage)
	}
	def, reg, err := s.register(args[0])
	if err != nil {
		return err
	}
	v := reg.Get()
	fmt.Fprintf(s.out, "%s = %d (0x%08x)\n", def.Name, v, v)
	return nil
}

func (s *Shell) write(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: write REG VALUE", ErrUsage)
	}
	def, reg, err := s.register(args[0])
	if err != nil {
		return err
	}
	v, err := parseValue(args[1])
	if err != nil {
		return err
	}
	if !def.Access.CanWrite() {
		trust.Warnf("%s is read only, writing anyway", def.Name)
	}
	if rtc.ConfigOnly(reg.Offset()) && !s.dev.ConfigModeIsSet() {
		return fmt.Errorf("write %s: %w (write CTRL 1 first)", def.Name, rtc.ErrNotConfigMode)
	}
	reg.Set(v)
	return nil
}

func (s *Shell) dump() {
	for _, def := range s.layout.Registers() {
		v := mmio.NewRegister32(s.bus, uintptr(def.AddressOffset)).Get()
		fmt.Fprintf(s.out, "0x%02x %-5s %10d  %s\n", def.AddressOffset, def.Name, v,
			sysdec.Decode(def, v))
	}
}

func (s *Shell) decode(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: decode REG [VALUE]", ErrUsage)
	}
	def, reg, err := s.register(args[0])
	if err != nil {
		return err
	}
	var v uint32
	if len(args) == 2 {
		if v, err = parseValue(args[1]); err != nil {
			return err
		}
	} else {
		v = reg.Get()
	}
	fmt.Fprintln(s.out, sysdec.Decode(def, v))
	return nil
}

func (s *Shell) wait(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("%w: wait REG VALUE [N]", ErrUsage)
	}
	def, reg, err := s.register(args[0])
	if err != nil {
		return err
	}
	want, err := parseValue(args[1])
	if err != nil {
		return err
	}
	limit := defaultWaitPolls
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			return fmt.Errorf("bad poll count %q", args[2])
		}
		limit = n
	}
	for polls := 0; polls < limit; polls++ {
		if reg.Get() == want {
			fmt.Fprintf(s.out, "%s = %d after %d polls\n", def.Name, want, polls)
			return nil
		}
	}
	return fmt.Errorf("%s != %d after %d polls: %w", def.Name, want, limit, ErrWaitExhausted)
}

func (s *Shell) advance(args []string) error {
	if s.clock == nil {
		return ErrNotSimulated
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: advance CYCLES", ErrUsage)
	}
	n, err := strconv.ParseUint(args[0], 0, 64)
	if err != nil {
		return fmt.Errorf("bad cycle count %q: %w", args[0], err)
	}
	s.clock.Advance(n)
	return nil
}

func (s *Shell) save(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: save FILE", ErrUsage)
	}
	fp, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := s.dev.Snapshot().WriteHex(fp, uint32(s.layout.Base)); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

func (s *Shell) load(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: load FILE", ErrUsage)
	}
	fp, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer fp.Close()
	snap, err := rtc.ReadHex(fp, uint32(s.layout.Base))
	if err != nil {
		return err
	}
	s.dev.Restore(snap)
	return nil
}
