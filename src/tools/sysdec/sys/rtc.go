package sys

import "rtcbringup/src/tools/sysdec"

var RTC = &sysdec.PeripheralDef{
	Version: 1,
	Description: `
A 32 bit counter clocked by the rtc clock through a programmable
prescaler, with one alarm comparator.  The counter is held while the
peripheral is in config mode; that is also the only time the prescaler,
counter and alarm registers accept writes.  The two interrupt status
flags latch and are cleared by entering config mode.`,
	AddressBlock: sysdec.AddressBlockDef{BaseAddress: 0x0, Size: 0x18},
	Register: map[string]*sysdec.RegisterDef{
		"CTRL": {
			Description: `Control.  Writing with CMF set enters config
mode, clears ISTA and restarts the prescaler.`,
			AddressOffset: 0x0,
			Size:          32,
			Access:        sysdec.Access("rw"),
			Field: map[string]*sysdec.FieldDef{
				"CMF": {
					Description: `Config mode
0 = counter may run
1 = counter held, registers writable`,
					BitRange: sysdec.BitRange(0, 0),
				},
				"INCIE": {
					Description: "Set the INC flag on every counter increment",
					BitRange:    sysdec.BitRange(1, 1),
				},
				"ALRMIE": {
					Description: "Set the ALRM flag when the counter reaches ALRM",
					BitRange:    sysdec.BitRange(2, 2),
				},
				"EN": {
					Description: "Core enable",
					BitRange:    sysdec.BitRange(4, 4),
				},
			},
		},
		"PSCR": {
			Description: `Prescaler.  The counter advances once every
PSCR+1 rtc clock cycles.`,
			AddressOffset: 0x4,
			Size:          32,
			Access:        sysdec.Access("rw"),
		},
		"CNT": {
			Description:   "Counter.  Writable in config mode only.",
			AddressOffset: 0x8,
			Size:          32,
			Access:        sysdec.Access("rw"),
		},
		"ALRM": {
			Description:   "Alarm target, compared against CNT on each increment.",
			AddressOffset: 0xC,
			Size:          32,
			Access:        sysdec.Access("rw"),
		},
		"ISTA": {
			Description:   "Interrupt status.",
			AddressOffset: 0x10,
			Size:          32,
			Access:        sysdec.Access("rw"),
			Field: map[string]*sysdec.FieldDef{
				"INC": {
					Description: "Counter incremented since last cleared",
					BitRange:    sysdec.BitRange(0, 0),
				},
				"ALRM": {
					Description: "Counter reached ALRM since last cleared",
					BitRange:    sysdec.BitRange(1, 1),
				},
			},
		},
		"SSTA": {
			Description:   "Secondary status.",
			AddressOffset: 0x14,
			Size:          32,
			Access:        sysdec.Access("r"),
			Field: map[string]*sysdec.FieldDef{
				"CFG": {
					Description: "Config mode active",
					BitRange:    sysdec.BitRange(0, 0),
				},
				"RUN": {
					Description: "Counter running",
					BitRange:    sysdec.BitRange(1, 1),
					EnumeratedValue: map[string]*sysdec.EnumeratedValueDef{
						"held":    {Value: 0},
						"running": {Value: 1},
					},
				},
			},
		},
	},
}

// FPGA is the reference board: apb4 at 50MHz, rtc clock at 6MHz.
var FPGA = sysdec.DeviceDef{
	Name:        "fpga_soc",
	Description: "FPGA soft SoC with the RTC on the APB4 bus",
	Peripheral: map[string]*sysdec.PeripheralDef{
		"RTC": RTC,
	},
	MMIOBindings: map[string]int{
		"RTC": 0x1000_4000,
	},
}
