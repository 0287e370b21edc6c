package diag

import (
	"fmt"
	"io"
)

// Console is where the diagnostic prints its results.  Log messages go
// through trust, not here.
type Console interface {
	Logf(string, ...interface{})
	Sprintf(string, ...interface{}) string
}

type ConsoleImpl struct {
	w io.Writer
}

func NewConsole(w io.Writer) *ConsoleImpl {
	return &ConsoleImpl{w: w}
}

// Logf prints one line; a trailing newline is added when the format does
// not end with one.
func (c *ConsoleImpl) Logf(format string, values ...interface{}) {
	if format == "" {
		return
	}
	s := c.Sprintf(format, values...)
	if s[len(s)-1] != '\n' {
		s += "\n"
	}
	io.WriteString(c.w, s)
}

func (c *ConsoleImpl) Sprintf(format string, values ...interface{}) string {
	return fmt.Sprintf(format, values...)
}
