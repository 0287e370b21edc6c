package rtcpoke

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"rtcbringup/src/hardware/rtc"
	"rtcbringup/src/hardware/rtc/sim"
	"rtcbringup/src/tools/sysdec"
	"rtcbringup/src/tools/sysdec/sys"
)

func newShell(t *testing.T) (*Shell, *sim.Peripheral, *bytes.Buffer) {
	t.Helper()
	layout, err := sysdec.Bind(sys.FPGA, "RTC")
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	p := sim.New()
	var out bytes.Buffer
	return New(p, layout, &out), p, &out
}

func mustExec(t *testing.T, s *Shell, line string) {
	t.Helper()
	if _, err := s.Execute(line); err != nil {
		t.Fatalf("%q: %v", line, err)
	}
}

func TestScriptedSession(t *testing.T) {
	s, _, out := newShell(t)
	script := `
# hold the counter and program it
write CTRL 1
write PSCR 9
write CNT 0x7b   # 123
read cnt
write ALRM 125
write ctrl 0b0010100
advance 20
wait ISTA 2 1
read 0x8
quit
read CNT
`
	if err := s.Run(strings.NewReader(script)); err != nil {
		t.Fatalf("run: %v", err)
	}
	expected := "CNT = 123 (0x0000007b)\n" +
		"ISTA = 2 after 0 polls\n" +
		"CNT = 125 (0x0000007d)\n"
	if out.String() != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, out.String())
	}
}

func TestErrorsDoNotStopTheShell(t *testing.T) {
	s, _, out := newShell(t)
	if err := s.Run(strings.NewReader("frob\nread NOPE\nread CTRL\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "!unknown command") ||
		!strings.HasPrefix(lines[1], "!") || lines[2] != "CTRL = 0 (0x00000000)" {
		t.Errorf("unexpected output:\n%s", out.String())
	}
}

func TestUsageAndWaitErrors(t *testing.T) {
	s, _, _ := newShell(t)
	if _, err := s.Execute("write CNT"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
	if _, err := s.Execute("read CNT extra"); !errors.Is(err, ErrUsage) {
		t.Errorf("expected usage error, got %v", err)
	}
	if _, err := s.Execute("wait ISTA 1 10"); !errors.Is(err, ErrWaitExhausted) {
		t.Errorf("expected the wait to run out, got %v", err)
	}
	if _, err := s.Execute(`write CNT "unterminated`); err == nil {
		t.Errorf("expected a split error")
	}
	if _, err := s.Execute("read FOO"); !errors.Is(err, sysdec.ErrUnknownRegister) {
		t.Errorf("expected unknown register, got %v", err)
	}
}

type plainBus struct {
	words [6]uint32
}

func (p *plainBus) Load32(off uintptr) uint32     { return p.words[off/4] }
func (p *plainBus) Store32(off uintptr, v uint32) { p.words[off/4] = v }

func TestAdvanceNeedsSimulator(t *testing.T) {
	layout, _ := sysdec.Bind(sys.FPGA, "RTC")
	var out bytes.Buffer
	s := New(&plainBus{}, layout, &out)
	if _, err := s.Execute("advance 10"); !errors.Is(err, ErrNotSimulated) {
		t.Errorf("expected not simulated, got %v", err)
	}
}

func TestDumpAndDecode(t *testing.T) {
	s, _, out := newShell(t)
	mustExec(t, s, "write CTRL 1")
	mustExec(t, s, "dump")
	mustExec(t, s, "decode CTRL 18")
	text := out.String()
	for _, want := range []string{
		"0x00 CTRL           1  EN=0 ALRMIE=0 INCIE=0 CMF=1",
		"0x14 SSTA           1  RUN=held CFG=1",
		"EN=1 ALRMIE=0 INCIE=1 CMF=0\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
}

func TestSaveLoad(t *testing.T) {
	s, p, _ := newShell(t)
	path := filepath.Join(t.TempDir(), "rtc.hex")
	mustExec(t, s, "write CTRL 1")
	mustExec(t, s, "write PSCR 999")
	mustExec(t, s, "write CNT 42")
	mustExec(t, s, "write ALRM 48")
	mustExec(t, s, "save "+path)

	p.Reset()
	mustExec(t, s, "load "+path)
	d := rtc.New(p)
	if d.Prescaler.Get() != 999 || d.Counter.Get() != 42 || d.Alarm.Get() != 48 {
		t.Errorf("load did not restore: %s", d.Snapshot())
	}
	if !d.ConfigModeIsSet() {
		t.Errorf("saved CTRL was config mode")
	}
}

func TestCounterWritesNeedConfigMode(t *testing.T) {
	s, p, _ := newShell(t)
	mustExec(t, s, "write CTRL 18")
	if _, err := s.Execute("write CNT 5"); !errors.Is(err, rtc.ErrNotConfigMode) {
		t.Errorf("expected not config mode, got %v", err)
	}
	if p.Rejected() != 0 {
		t.Errorf("refused write should not reach the bus, %d rejected", p.Rejected())
	}
	mustExec(t, s, "write ISTA 3")
	mustExec(t, s, "write CTRL 1")
	mustExec(t, s, "write CNT 5")
	if got := rtc.New(p).Counter.Get(); got != 5 {
		t.Errorf("expected CNT 5 in config mode, got %d", got)
	}
}
