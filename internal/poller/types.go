// internal/poller/types.go
package poller

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tamzrod/encoder-monitor/internal/measurement"
)

// Channel is the byte-oriented duplex link to one encoder.
type Channel interface {
	WriteByte(b byte) error
	ReadLine() (string, error)
	ResetInput() error // discard stale buffered input
}

// Port is a Channel the caller owns and must close.
type Port interface {
	Channel
	io.Closer
}

// ErrTimeout means no complete line arrived within the read timeout.
// Recoverable: the next cycle tries again.
var ErrTimeout error = timeoutError{}

type timeoutError struct{}

func (timeoutError) Error() string { return "read timeout" }

// Code is the status block error code for timeouts.
func (timeoutError) Code() uint16 { return 3 }

// ChannelError is an I/O failure on the link itself. Fatal to the unit.
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }

// Code is the status block error code for channel failures.
func (e *ChannelError) Code() uint16 { return 5 }

// State is the driver's position within one cycle.
type State int32

const (
	Idle State = iota
	AwaitingResponse
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingResponse:
		return "awaiting-response"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// PollResult is the outcome of one poll cycle.
// Exactly one of Measurement and Err is set.
type PollResult struct {
	UnitID     string
	At         time.Time
	Seq        uint64
	SampleBits uint

	// Line is the raw response, kept for diagnostics on failure.
	Line string

	Measurement *measurement.Measurement
	Err         error // non-nil means the poll cycle failed

	// History is a newest-first copy taken after this cycle's push.
	History []uint32
}

// OK reports whether the cycle produced a measurement.
func (r PollResult) OK() bool { return r.Err == nil && r.Measurement != nil }

// Fatal reports whether the link itself failed.
func (r PollResult) Fatal() bool {
	var ce *ChannelError
	return errors.As(r.Err, &ce)
}
