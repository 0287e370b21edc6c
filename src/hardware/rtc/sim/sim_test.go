package sim

import (
	"testing"
	"time"

	"rtcbringup/src/hardware/rtc"
)

func newConfigured(t *testing.T, div uint32, opts ...Option) (*Peripheral, *rtc.Device) {
	t.Helper()
	p := New(opts...)
	d := rtc.New(p)
	d.EnterConfigMode()
	d.SetPrescaler(div)
	d.Counter.Set(0)
	return p, d
}

func TestCounterReadback(t *testing.T) {
	_, d := newConfigured(t, rtc.DefaultPrescaler+1)
	for i := uint32(0); i < 6; i++ {
		d.Counter.Set(123 * i)
		d.Alarm.Set(d.Counter.Get() + 10)
		if got := d.Counter.Get(); got != 123*i {
			t.Errorf("round %d: wrote %d but read back %d", i, 123*i, got)
		}
		if got := d.Alarm.Get(); got != 123*i+10 {
			t.Errorf("round %d: alarm read back %d", i, got)
		}
	}
}

func TestIncrementFlagAfterExactlyDivisorCycles(t *testing.T) {
	for _, div := range []uint32{1, 2, 7, 1000, rtc.DefaultPrescaler + 1} {
		p, d := newConfigured(t, div)
		d.Start(rtc.ModeIncrement)
		p.Advance(uint64(div) - 1)
		if d.IncrementIsSet() || d.Counter.Get() != 0 {
			t.Errorf("div %d: flag or counter moved early (ista=%d cnt=%d)",
				div, d.Status(), d.Counter.Get())
		}
		p.Advance(1)
		if d.Status() != rtc.StatusIncrement {
			t.Errorf("div %d: expected ISTA=%d after %d cycles but got %d",
				div, rtc.StatusIncrement, div, d.Status())
		}
		if d.Counter.Get() != 1 {
			t.Errorf("div %d: expected counter 1 but got %d", div, d.Counter.Get())
		}
	}
}

func TestConfigModeClearsAllFlags(t *testing.T) {
	p, d := newConfigured(t, 4)
	d.Alarm.Set(1)
	d.Start(rtc.ControlCoreEnable | rtc.ControlIncrementEnable | rtc.ControlAlarmEnable)
	p.Advance(4)
	if d.Status() != rtc.StatusMask {
		t.Fatalf("expected both flags set but got %d", d.Status())
	}
	d.EnterConfigMode()
	if d.Status() != 0 {
		t.Errorf("entering config mode left ISTA=%d", d.Status())
	}
	//and again while already in config mode
	d.Control.Set(rtc.ModeConfig | rtc.ControlIncrementEnable)
	if d.Status() != 0 {
		t.Errorf("ISTA should stay clear, got %d", d.Status())
	}
}

func TestConfigModeResetsPrescalerPhase(t *testing.T) {
	p, d := newConfigured(t, 10)
	d.Start(rtc.ModeIncrement)
	p.Advance(9)
	d.EnterConfigMode()
	d.Start(rtc.ModeIncrement)
	p.Advance(9)
	if d.IncrementIsSet() {
		t.Errorf("phase should restart on config entry")
	}
	p.Advance(1)
	if !d.IncrementIsSet() {
		t.Errorf("expected increment after a full divisor")
	}
}

func TestAlarmExactlyAtTarget(t *testing.T) {
	p, d := newConfigured(t, 10)
	d.Alarm.Set(d.Counter.Get() + 6)
	d.Start(rtc.ModeAlarm)
	for i := 0; i < 5; i++ {
		p.Advance(10)
		if d.AlarmIsSet() {
			t.Fatalf("alarm fired early at counter %d", d.Counter.Get())
		}
	}
	p.Advance(9)
	if d.AlarmIsSet() {
		t.Fatalf("alarm fired one cycle early")
	}
	p.Advance(1)
	if d.Status() != rtc.StatusAlarm {
		t.Errorf("expected ISTA=%d but got %d", rtc.StatusAlarm, d.Status())
	}
	if d.Counter.Get() != 6 {
		t.Errorf("expected counter 6 at alarm but got %d", d.Counter.Get())
	}
}

func TestAlarmInsideLargeStep(t *testing.T) {
	p, d := newConfigured(t, 1)
	d.Alarm.Set(6)
	d.Start(rtc.ModeAlarm)
	p.Advance(1000)
	if !d.AlarmIsSet() {
		t.Errorf("alarm at 6 should latch when the counter jumps to %d", d.Counter.Get())
	}
}

func TestAlarmAcrossWrap(t *testing.T) {
	p, d := newConfigured(t, 1)
	d.Counter.Set(0xFFFFFFFE)
	d.Alarm.Set(1)
	d.Start(rtc.ModeAlarm)
	p.Advance(2)
	if d.AlarmIsSet() || d.Counter.Get() != 0 {
		t.Fatalf("expected wrap to 0 without alarm, got cnt=%d ista=%d",
			d.Counter.Get(), d.Status())
	}
	p.Advance(1)
	if !d.AlarmIsSet() {
		t.Errorf("alarm should fire at 1 after the wrap")
	}
}

func TestWritesIgnoredOutsideConfigMode(t *testing.T) {
	p, d := newConfigured(t, 100)
	d.Start(rtc.ModeIncrement)
	d.Counter.Set(55)
	d.Prescaler.Set(3)
	d.Alarm.Set(9)
	if d.Counter.Get() == 55 || d.Prescaler.Get() == 3 || d.Alarm.Get() == 9 {
		t.Errorf("writes should be dropped while running: %s", d.Snapshot())
	}
	if p.Rejected() != 3 {
		t.Errorf("expected 3 rejected writes but got %d", p.Rejected())
	}
}

func TestStatusWriteOneToClear(t *testing.T) {
	p, d := newConfigured(t, 2)
	d.Alarm.Set(1)
	d.Start(rtc.ControlCoreEnable | rtc.ControlIncrementEnable | rtc.ControlAlarmEnable)
	p.Advance(2)
	d.AcknowledgeStatus(rtc.StatusIncrement)
	if d.Status() != rtc.StatusAlarm {
		t.Errorf("expected only alarm left but got %d", d.Status())
	}
}

func TestSecondaryStatus(t *testing.T) {
	_, d := newConfigured(t, 2)
	if s := d.SecondaryStatus.Get(); s != rtc.SecondaryConfigMode {
		t.Errorf("config mode: expected SSTA=%d but got %d", rtc.SecondaryConfigMode, s)
	}
	d.Start(rtc.ModeIncrement)
	if !d.RunningIsSet() {
		t.Errorf("expected running bit after start")
	}
	d.SecondaryStatus.Set(0xFF)
	if d.SecondaryStatus.Get() != rtc.SecondaryRunning {
		t.Errorf("SSTA should be read only")
	}
}

func TestCoreDisabledHoldsCounter(t *testing.T) {
	p, d := newConfigured(t, 1)
	d.Start(rtc.ControlIncrementEnable)
	p.Advance(50)
	if d.Counter.Get() != 0 || d.Status() != 0 {
		t.Errorf("counter should not run without the core enable bit")
	}
}

func TestAccessCostDrivesPolling(t *testing.T) {
	_, d := newConfigured(t, 100, WithAccessCost(10))
	d.Start(rtc.ModeIncrement)
	polls := 0
	for d.Status() != rtc.StatusIncrement {
		polls++
		if polls > 1000 {
			t.Fatalf("flag never came up")
		}
	}
	if polls < 5 || polls > 12 {
		t.Errorf("expected about ten polls at 10 cycles each, got %d", polls)
	}
}

func TestRealtimePacing(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	_, d := newConfigured(t, 10, WithRealtime(1000, clock))
	d.Start(rtc.ModeIncrement)
	now = now.Add(95 * time.Millisecond)
	if got := d.Counter.Get(); got != 9 {
		t.Errorf("95ms at 1kHz / 10 should be 9 ticks, got %d", got)
	}
	now = now.Add(5 * time.Millisecond)
	if got := d.Counter.Get(); got != 10 {
		t.Errorf("expected 10 ticks after 100ms, got %d", got)
	}
}

func TestTraceAndReset(t *testing.T) {
	p, d := newConfigured(t, 5, WithTrace(3))
	d.Start(rtc.ModeIncrement)
	for i := 0; i < 5; i++ {
		p.Advance(5)
	}
	tr := p.Trace()
	if len(tr) != 3 {
		t.Fatalf("expected trace capped at 3, got %d", len(tr))
	}
	if tr[0].Counter != 3 || tr[2].Counter != 5 || tr[2].Cycle != 25 {
		t.Errorf("unexpected trace %+v", tr)
	}
	p.Reset()
	if p.Cycles() != 0 || len(p.Trace()) != 0 || d.Control.Get() != 0 {
		t.Errorf("reset did not clear state")
	}
}
