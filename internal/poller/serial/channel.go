// internal/poller/serial/channel.go
package serial

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	bugst "go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/tamzrod/encoder-monitor/internal/poller"
)

const readChunk = 64

// maxPending bounds the line buffer when the peer never sends '\n'.
const maxPending = 1024

// Config is minimal port config. 8N1 is fixed.
type Config struct {
	Device      string
	BaudRate    int
	ReadTimeout time.Duration
}

// port is the subset of bugst.Port the channel uses.
type port interface {
	io.ReadWriteCloser
	ResetInputBuffer() error
}

// Channel implements poller.Channel over a serial port.
// Line-oriented: replies end with '\n', an optional '\r' is stripped.
type Channel struct {
	port        port
	readTimeout time.Duration
	pending     []byte
	chunk       []byte
}

// Open opens and configures the device.
func Open(cfg Config, log *zap.Logger) (*Channel, error) {
	if cfg.Device == "" {
		return nil, errors.New("serial: device required")
	}
	if cfg.ReadTimeout <= 0 {
		return nil, errors.New("serial: read timeout must be > 0")
	}

	mode := &bugst.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   bugst.NoParity,
		StopBits: bugst.OneStopBit,
	}
	p, err := bugst.Open(cfg.Device, mode)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", cfg.Device, err)
	}
	if err := p.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("serial: set read timeout on %s: %w", cfg.Device, err)
	}

	if log != nil {
		log.Info("[serial] port opened",
			zap.String("portName", cfg.Device),
			zap.Int("baudRate", cfg.BaudRate),
			zap.Duration("readTimeout", cfg.ReadTimeout),
		)
	}

	return newChannel(p, cfg.ReadTimeout), nil
}

func newChannel(p port, readTimeout time.Duration) *Channel {
	return &Channel{
		port:        p,
		readTimeout: readTimeout,
		pending:     make([]byte, 0, readChunk),
		chunk:       make([]byte, readChunk),
	}
}

// WriteByte sends one request byte.
func (c *Channel) WriteByte(b byte) error {
	n, err := c.port.Write([]byte{b})
	if err != nil {
		return &poller.ChannelError{Op: "write", Err: err}
	}
	if n != 1 {
		return &poller.ChannelError{Op: "write", Err: io.ErrShortWrite}
	}
	return nil
}

// ResetInput drops both the driver's and our own buffered bytes.
func (c *Channel) ResetInput() error {
	c.pending = c.pending[:0]
	if err := c.port.ResetInputBuffer(); err != nil {
		return &poller.ChannelError{Op: "reset", Err: err}
	}
	return nil
}

// ReadLine blocks until '\n' or until the read timeout elapses.
// On timeout the partial line (if any) is returned with poller.ErrTimeout.
func (c *Channel) ReadLine() (string, error) {
	deadline := time.Now().Add(c.readTimeout)

	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := string(bytes.TrimRight(c.pending[:i], "\r"))
			c.pending = append(c.pending[:0], c.pending[i+1:]...)
			return line, nil
		}

		if len(c.pending) > maxPending || time.Now().After(deadline) {
			return c.takePartial(), poller.ErrTimeout
		}

		n, err := c.port.Read(c.chunk)
		if err != nil {
			return "", &poller.ChannelError{Op: "read", Err: err}
		}
		if n == 0 {
			// go.bug.st/serial reports its read timeout as (0, nil).
			return c.takePartial(), poller.ErrTimeout
		}
		c.pending = append(c.pending, c.chunk[:n]...)
	}
}

func (c *Channel) takePartial() string {
	line := string(c.pending)
	c.pending = c.pending[:0]
	return line
}

// Close closes the underlying port.
func (c *Channel) Close() error {
	return c.port.Close()
}
