// Package diag is the RTC bring-up diagnostic: program the prescaler,
// check register readback, then watch the tick and alarm flags.
package diag

import (
	"context"
	"time"

	"rtcbringup/src/hardware/rtc"
	"rtcbringup/src/lib/trust"
)

type Config struct {
	Prescaler    uint32 // PSCR value, divisor-1
	Rounds       int    // iterations of each phase
	StaticStride uint32 // counter value step in the readback phase
	StaticAlarm  uint32 // alarm offset from counter in the readback phase
	AlarmLead    uint32 // counts between alarms
	// AckIncrement writes the INC flag back to ISTA after each tick so the
	// next wait sees a fresh tick.  Hardware without write-one-to-clear
	// ignores the write.
	AckIncrement bool
}

func DefaultConfig() Config {
	return Config{
		Prescaler:    rtc.DefaultPrescaler,
		Rounds:       6,
		StaticStride: 123,
		StaticAlarm:  10,
		AlarmLead:    6,
		AckIncrement: true,
	}
}

// Result is what the run saw.  Mismatches counts readback failures; the
// run carries on after one, as the board does.
type Result struct {
	Mismatches       int
	IncrementSamples []uint32
	AlarmSamples     []uint32
	Polls            int
	Elapsed          time.Duration
}

type Runner struct {
	dev *rtc.Device
	con Console
	cfg Config
}

func NewRunner(dev *rtc.Device, con Console, cfg Config) *Runner {
	if cfg.Rounds <= 0 {
		cfg.Rounds = DefaultConfig().Rounds
	}
	return &Runner{dev: dev, con: con, cfg: cfg}
}

// Run does every phase in order.  The only error is a wait that was cut
// short by ctx; a readback mismatch is reported on the console and in
// Result but is not an error.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}
	defer func() { res.Elapsed = time.Since(start) }()

	r.con.Logf("rtc test")
	r.Configure()
	r.StaticReadback(res)
	if err := r.IncrementTest(ctx, res); err != nil {
		return res, err
	}
	if err := r.AlarmTest(ctx, res); err != nil {
		return res, err
	}
	r.con.Logf("rtc test done")
	trust.Infof("rtc test finished: %d mismatches, %d polls", res.Mismatches, res.Polls)
	return res, nil
}

func (r *Runner) printControl() {
	r.con.Logf("CTRL: %d PSCR: %d", r.dev.Control.Get(), r.dev.Prescaler.Get())
}

// Configure enters config mode and programs the prescaler.
func (r *Runner) Configure() {
	trust.Debugf("configure: PSCR=%d", r.cfg.Prescaler)
	r.dev.EnterConfigMode()
	r.dev.Prescaler.Set(r.cfg.Prescaler)
	r.printControl()
}

// StaticReadback writes counter and alarm values while held in config mode
// and checks the counter reads back.
func (r *Runner) StaticReadback(res *Result) {
	for i := 0; i < r.cfg.Rounds; i++ {
		want := r.cfg.StaticStride * uint32(i)
		r.dev.Counter.Set(want)
		r.dev.Alarm.Set(r.dev.Counter.Get() + r.cfg.StaticAlarm)
		r.con.Logf("[static]CNT: %d ALRM: %d", r.dev.Counter.Get(), r.dev.Alarm.Get())
		if got := r.dev.Counter.Get(); got != want {
			r.con.Logf("error")
			trust.Warnf("counter readback: wrote %d, read %d", want, got)
			res.Mismatches++
		}
	}
}

// IncrementTest lets the counter run with the tick flag enabled and
// samples the counter on each tick.
func (r *Runner) IncrementTest(ctx context.Context, res *Result) error {
	r.dev.Counter.Set(0)
	r.dev.Start(rtc.ModeIncrement)
	r.printControl()
	r.con.Logf("cnt inc test")
	for i := 0; i < r.cfg.Rounds; i++ {
		polls, err := waitFor(ctx, r.dev.InterruptStatus, "ISTA", rtc.StatusIncrement)
		res.Polls += polls
		if err != nil {
			return err
		}
		cnt := r.dev.Counter.Get()
		r.con.Logf("RTC_REG_CNT: %d", cnt)
		res.IncrementSamples = append(res.IncrementSamples, cnt)
		if r.cfg.AckIncrement {
			r.dev.AcknowledgeStatus(rtc.StatusIncrement)
		}
	}
	r.con.Logf("cnt inc test done")
	return nil
}

// AlarmTest arms the alarm AlarmLead counts ahead, waits for it, clears it
// by going back to config mode, and rearms.
func (r *Runner) AlarmTest(ctx context.Context, res *Result) error {
	r.con.Logf("alrm trigger test")
	r.dev.EnterConfigMode()
	r.dev.Counter.Set(0)
	r.dev.Alarm.Set(r.dev.Counter.Get() + r.cfg.AlarmLead)
	for i := 0; i < r.cfg.Rounds; i++ {
		r.dev.Start(rtc.ModeAlarm)
		polls, err := waitFor(ctx, r.dev.InterruptStatus, "ISTA", rtc.StatusAlarm)
		res.Polls += polls
		if err != nil {
			return err
		}
		r.dev.EnterConfigMode()
		polls, err = waitFor(ctx, r.dev.InterruptStatus, "ISTA", 0)
		res.Polls += polls
		if err != nil {
			return err
		}
		cnt := r.dev.Counter.Get()
		r.con.Logf("RTC_REG_CNT: %d", cnt)
		res.AlarmSamples = append(res.AlarmSamples, cnt)
		r.dev.Alarm.Set(cnt + r.cfg.AlarmLead)
	}
	r.printControl()
	r.con.Logf("alrm trigger test done")
	return nil
}
