package diag

import (
	"context"
	"errors"
	"fmt"

	"rtcbringup/src/hardware/mmio"
	"rtcbringup/src/lib/trust"
)

var ErrTimeout = errors.New("gave up waiting on register")

// how many polls between looks at the context; the loop is hot so we
// don't want a channel receive on every read
const ctxCheckInterval = 1024

// WaitError says which register never showed the value we wanted.
type WaitError struct {
	Register string
	Want     uint32
	Last     uint32
	Polls    int
	Err      error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("%s never became %d (last %d after %d polls): %v",
		e.Register, e.Want, e.Last, e.Polls, e.Err)
}

// Unwrap only reports ErrTimeout when the deadline ran out; a cancel
// (ctrl-c) is just the context error.
func (e *WaitError) Unwrap() []error {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return []error{ErrTimeout, e.Err}
	}
	return []error{e.Err}
}

// waitFor spins until reg reads exactly want.  It returns the number of
// reads that did not match.  With a context that never ends this is the
// same unbounded spin the board does.
func waitFor(ctx context.Context, reg mmio.Register32, name string, want uint32) (int, error) {
	polls := 0
	for {
		v := reg.Get()
		if v == want {
			trust.Statsf("wait", "%s=%d after %d polls", name, want, polls)
			return polls, nil
		}
		polls++
		if polls%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return polls, &WaitError{Register: name, Want: want, Last: v, Polls: polls, Err: err}
			}
		}
	}
}
