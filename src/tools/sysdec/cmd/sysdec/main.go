package main

import (
	"flag"
	"log"
	"os"

	"rtcbringup/src/tools/sysdec"
	"rtcbringup/src/tools/sysdec/sys"
)

var peripheral = flag.String("p", "RTC", "peripheral to describe")

func main() {
	flag.Parse()
	b, err := sysdec.Bind(sys.FPGA, *peripheral)
	if err != nil {
		log.Fatal(err)
	}
	if err := sysdec.Describe(os.Stdout, b); err != nil {
		log.Fatal(err)
	}
}
