package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"rtcbringup/src/hardware/board"
	"rtcbringup/src/lib/trust"
	"rtcbringup/src/tools/rtcpoke"
	"rtcbringup/src/tools/sysdec"
	"rtcbringup/src/tools/sysdec/sys"
)

var backend = flag.String("b", board.BackendSim, "register backend: sim or devmem")
var memPath = flag.String("mem", "/dev/mem", "device to map physical memory from (devmem)")
var cost = flag.Uint64("cost", 0, "rtc cycles per register access (sim)")
var realtime = flag.Bool("realtime", false, "pace the simulator off the wall clock (sim)")
var script = flag.String("f", "", "read commands from this file instead of stdin")
var verbose = flag.Int("v", 0, "verbosity level: 0 terse (default), 1 debug info, 2 show everything ")

func main() {
	flag.Parse()
	trust.SetLevel(trust.Verbosity(*verbose))

	layout, err := sysdec.Bind(sys.FPGA, "RTC")
	if err != nil {
		trust.Fatalf(1, "%v", err)
	}
	bc := board.DefaultConfig()
	bc.Backend = *backend
	bc.Base = layout.Base
	bc.DevMem = *memPath
	bc.AccessCost = *cost
	bc.Realtime = *realtime
	b, err := board.Open(bc)
	if err != nil {
		trust.Fatalf(1, "%v", err)
	}
	defer b.Close()

	var in io.Reader = os.Stdin
	shell := rtcpoke.New(b.Bus, layout, os.Stdout)
	if *script != "" {
		fp, err := os.Open(*script)
		if err != nil {
			b.Close()
			trust.Fatalf(1, "%v", err)
		}
		defer fp.Close()
		in = fp
	} else if isatty.IsTerminal(os.Stdin.Fd()) {
		fmt.Printf("%s on %s at 0x%08x, %s backend; help for commands\n",
			layout.Peripheral.Name, layout.Device, layout.Base, bc.Backend)
		shell.SetPrompt("rtc> ")
	}
	if err := shell.Run(in); err != nil {
		trust.Errorf("%v", err)
	}
}
