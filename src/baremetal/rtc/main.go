//go:build tinygo
// +build tinygo

package main

import (
	"context"
	"os"

	"rtcbringup/src/diag"
	"rtcbringup/src/hardware/mmio"
	"rtcbringup/src/hardware/rtc"
	"rtcbringup/src/lib/trust"
)

// On the board stdout is the uart, so the output matches what the C
// version of this test prints line for line.
//
//go:noinline
func main() {
	trust.SetOutput(os.Stdout)
	dev := rtc.New(mmio.Physical(rtc.BaseAddress))
	con := diag.NewConsole(os.Stdout)
	res, err := diag.NewRunner(dev, con, diag.DefaultConfig()).Run(context.Background())
	if err != nil {
		trust.Errorf("%v", err)
	}
	for _, issue := range res.Verify(diag.DefaultConfig()) {
		trust.Warnf("%s", issue)
	}
	for {
	}
}
