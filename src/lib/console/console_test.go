package console

import (
	"bytes"
	"os"
	"testing"
)

func TestCRLF(t *testing.T) {
	var b bytes.Buffer
	n, err := writeCRLF(&b, []byte("rtc test\nCNT: 1\r\n\n"))
	if err != nil {
		t.Fatalf("%v", err)
	}
	if n != 18 {
		t.Errorf("expected count of the input (18) but got %d", n)
	}
	if b.String() != "rtc test\r\nCNT: 1\r\n\r\n" {
		t.Errorf("unexpected translation %q", b.String())
	}
}

func TestDefaultIsStdout(t *testing.T) {
	w, err := Open(Config{})
	if err != nil {
		t.Fatalf("%v", err)
	}
	nc, ok := w.(nopCloser)
	if !ok || nc.Writer != os.Stdout {
		t.Errorf("expected stdout, got %T", w)
	}
	if err := w.Close(); err != nil {
		t.Errorf("closing stdout sink: %v", err)
	}
}

func TestBothIsAnError(t *testing.T) {
	if _, err := Open(Config{TTY: "/dev/pts/9", Serial: "/dev/ttyUSB0"}); err == nil {
		t.Errorf("expected an error when both sinks are named")
	}
}
