package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"time"

	"rtcbringup/src/diag"
	"rtcbringup/src/hardware/board"
	"rtcbringup/src/hardware/rtc"
	"rtcbringup/src/hardware/rtc/sim"
	"rtcbringup/src/lib/console"
	"rtcbringup/src/lib/trust"
)

var helpFlag = flag.Bool("h", false, "get usage info")
var backend = flag.String("b", board.BackendSim, "register backend: sim or devmem")
var base = flag.Uint64("base", rtc.BaseAddress, "physical base address of the rtc (devmem)")
var memPath = flag.String("mem", "/dev/mem", "device to map physical memory from (devmem)")
var prescaler = flag.Uint64("pscr", rtc.DefaultPrescaler, "prescaler value, divisor-1")
var rounds = flag.Int("n", 6, "iterations of each phase")
var timeout = flag.Duration("timeout", 0, "give up on a stuck flag after this long (0 waits forever)")
var cost = flag.Uint64("cost", board.DefaultAccessCost, "rtc cycles per register access (sim)")
var realtime = flag.Bool("realtime", false, "pace the simulator off the wall clock (sim)")
var noAck = flag.Bool("noack", false, "don't write the tick flag back to ISTA between ticks")
var ptyFlag = flag.String("p", "", "supply a pseudo TTY to output to")
var serialFlag = flag.String("s", "", "serial port to output to")
var baud = flag.Int("baud", console.DefaultBaud, "serial port speed")
var listFlag = flag.Bool("list", false, "list the serial ports and exit")
var plotFlag = flag.String("plot", "", "write a png chart of the counter samples here")
var traceFlag = flag.Int("trace", 0, "keep the last N simulator steps and add them to the -plot chart (sim)")
var hexFlag = flag.String("hex", "", "write the final registers here as intel hex")
var verbose = flag.Int("v", 0, "verbosity level: 0 terse (default), 1 debug info, 2 show everything ")

const (
	exitSetup       = 1
	exitTimeout     = 2
	exitInterrupted = 3
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: rtctest [flags]\n")
	flag.PrintDefaults()
	os.Exit(exitSetup)
}

func main() {
	flag.Parse()
	if *helpFlag || flag.NArg() != 0 {
		usage()
	}
	trust.SetLevel(trust.Verbosity(*verbose))
	if *listFlag {
		if err := listPorts(os.Stdout, console.Ports); err != nil {
			trust.Fatalf(exitSetup, "%v", err)
		}
		return
	}
	pscr, err := prescalerValue(*prescaler)
	if err != nil {
		trust.Fatalf(exitSetup, "%v", err)
	}

	out, err := console.Open(console.Config{TTY: *ptyFlag, Serial: *serialFlag, Baud: *baud})
	if err != nil {
		trust.Fatalf(exitSetup, "%v", err)
	}
	defer out.Close()

	bc := board.DefaultConfig()
	bc.Backend = *backend
	bc.Base = uintptr(*base)
	bc.DevMem = *memPath
	bc.AccessCost = *cost
	bc.Realtime = *realtime
	bc.TraceLimit = *traceFlag
	b, err := board.Open(bc)
	if err != nil {
		trust.Fatalf(exitSetup, "%v", err)
	}
	defer b.Close()

	cfg := diag.DefaultConfig()
	cfg.Prescaler = pscr
	cfg.Rounds = *rounds
	cfg.AckIncrement = !*noAck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	dev := rtc.New(b.Bus)
	res, runErr := diag.NewRunner(dev, diag.NewConsole(out), cfg).Run(ctx)
	trust.Debugf("run took %v, %d polls", res.Elapsed.Round(time.Millisecond), res.Polls)
	if b.Sim != nil {
		trust.Statsf("sim", "%d rtc cycles, %d rejected writes", b.Sim.Cycles(), b.Sim.Rejected())
	}
	for _, issue := range res.Verify(cfg) {
		trust.Warnf("%s", issue)
	}
	if *plotFlag != "" {
		var trace []sim.Event
		if b.Sim != nil {
			trace = b.Sim.Trace()
		}
		if err := writeFile(*plotFlag, func(f *os.File) error { return diag.WritePlot(f, res, trace) }); err != nil {
			trust.Errorf("plot: %v", err)
		}
	}
	if *hexFlag != "" {
		snap := dev.Snapshot()
		if err := writeFile(*hexFlag, func(f *os.File) error { return snap.WriteHex(f, uint32(bc.Base)) }); err != nil {
			trust.Errorf("hex: %v", err)
		}
	}
	if runErr != nil {
		code := exitInterrupted
		if errors.Is(runErr, diag.ErrTimeout) {
			code = exitTimeout
		}
		//Fatalf doesn't return, so the defers won't run
		out.Close()
		b.Close()
		trust.Fatalf(code, "%v", runErr)
	}
}

func prescalerValue(v uint64) (uint32, error) {
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("-pscr %d does not fit the 32 bit PSCR register", v)
	}
	return uint32(v), nil
}

func listPorts(w io.Writer, ports func() ([]string, error)) error {
	names, err := ports()
	if err != nil {
		return fmt.Errorf("listing serial ports: %w", err)
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
