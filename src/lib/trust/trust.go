package trust

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type MaskLevel int

const (
	Nothing   MaskLevel = 0x0
	ErrorMask MaskLevel = 0x1
	WarnMask  MaskLevel = 0x2
	InfoMask  MaskLevel = 0x4
	DebugMask MaskLevel = 0x8
	StatsMask MaskLevel = 0x10
	fatalMask MaskLevel = 0x80
)

var (
	mu     sync.Mutex
	level  = fatalMask | ErrorMask | WarnMask | InfoMask
	out    io.Writer = os.Stderr
	exitFn           = os.Exit
)

// SetLevel lets you set an error mask directly. You can pass in something like
// ErrorMask | DebugMask to control exactly what gets printed.  It returns the
// previous mask.  Fatal messages cannot be masked.
func SetLevel(mask MaskLevel) MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	r := level &^ fatalMask
	level = (mask & 0x1f) | fatalMask
	return r
}

// Verbosity maps a -v style count to a mask: 0 terse, 1 debug info,
// 2 show everything.
func Verbosity(v int) MaskLevel {
	m := ErrorMask | WarnMask | InfoMask
	if v > 0 {
		m |= DebugMask
	}
	if v > 1 {
		m |= StatsMask
	}
	return m
}

func Level() MaskLevel {
	mu.Lock()
	defer mu.Unlock()
	return level
}

func LevelToString() string {
	l := Level()
	result := ""
	names := []struct {
		m MaskLevel
		s string
	}{{ErrorMask, "error"}, {WarnMask, "warn"}, {InfoMask, "info"},
		{DebugMask, "debug"}, {StatsMask, "stats"}}
	for _, n := range names {
		if l&n.m == 0 {
			continue
		}
		if result != "" {
			result += " "
		}
		result += n.s
	}
	return result
}

// SetOutput changes where log lines go (stderr by default) and returns the
// previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

func logf(l MaskLevel, format string, params ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level&l == 0 {
		return
	}
	prefix := ""
	switch {
	case l&fatalMask > 0:
		prefix = "FATAL:"
	case l&ErrorMask > 0:
		prefix = "ERROR:"
	case l&WarnMask > 0:
		prefix = " WARN:"
	case l&InfoMask > 0:
		prefix = " INFO:"
	case l&DebugMask > 0:
		prefix = "DEBUG:"
	case l&StatsMask > 0:
		prefix = fmt.Sprintf("STATS[%v]:", params[0])
		params = params[1:]
	}
	if len(format) == 0 {
		format = "\n"
	} else if format[len(format)-1] != '\n' {
		format += "\n"
	}
	fmt.Fprint(out, prefix)
	fmt.Fprintf(out, format, params...)
}

//Fatalf prints the given log message (format + params) and then
//exits with the exitCode provided.  Fatalf is not maskable.
func Fatalf(exitCode int, format string, params ...interface{}) {
	logf(fatalMask, format, params...)
	exitFn(exitCode)
}

//Errorf prints the given log message (format + params) using the ErrorMask level.
func Errorf(format string, params ...interface{}) {
	logf(ErrorMask, format, params...)
}

//Warnf prints the given log message (format + params) using the WarnMask level.
func Warnf(format string, params ...interface{}) {
	logf(WarnMask, format, params...)
}

//Infof prints the given log message (format + params) using the InfoMask level.
func Infof(format string, params ...interface{}) {
	logf(InfoMask, format, params...)
}

//Debugf prints the given log message (format + params) using the DebugMask level.
func Debugf(format string, params ...interface{}) {
	logf(DebugMask, format, params...)
}

//Statsf prints the given log message (format + params) using the StatsMask level and
//takes an extra parameter that will be visible in the log message as the category
//of stats that is reported.
func Statsf(category string, format string, params ...interface{}) {
	logf(StatsMask, format, append([]interface{}{category}, params...)...)
}
