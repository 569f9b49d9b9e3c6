// internal/poller/serial/loopback.go
package serial

import (
	"errors"
	"sync"

	"github.com/tamzrod/encoder-monitor/internal/frame"
	"github.com/tamzrod/encoder-monitor/internal/measurement"
	"github.com/tamzrod/encoder-monitor/internal/poller"
)

// Source produces the reply line for the n-th request (1-based).
type Source func(n uint64) string

// Loopback is an in-memory encoder: every request byte queues one reply.
type Loopback struct {
	mu      sync.Mutex
	source  Source
	pending []string
	n       uint64
	closed  bool
}

var errClosed = errors.New("loopback closed")

func NewLoopback(src Source) *Loopback {
	return &Loopback{source: src}
}

func (l *Loopback) WriteByte(b byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return &poller.ChannelError{Op: "write", Err: errClosed}
	}
	if b != frame.Request {
		return nil
	}
	l.n++
	l.pending = append(l.pending, l.source(l.n))
	return nil
}

func (l *Loopback) ReadLine() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return "", &poller.ChannelError{Op: "read", Err: errClosed}
	}
	if len(l.pending) == 0 {
		return "", poller.ErrTimeout
	}
	line := l.pending[0]
	l.pending = l.pending[1:]
	return line, nil
}

func (l *Loopback) ResetInput() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
	return nil
}

func (l *Loopback) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// RotatingSource simulates a shaft turning one revolution every 3600
// requests, with the turn counter following each wrap.
func RotatingSource(dec measurement.Decoder) Source {
	counts := uint64(1) << dec.Bits
	step := counts / 3600
	if step == 0 {
		step = 1
	}

	return func(n uint64) string {
		total := n * step
		m := measurement.Measurement{
			Position: uint32(total % counts),
			Turns:    int32(int16(total / counts)),
			CRCOK:    true,
		}
		return frame.Format(dec.Encode(m))
	}
}
