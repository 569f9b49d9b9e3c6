// internal/writer/ingest/client.go
package ingest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

const (
	magicHi byte = 0x52 // 'R'
	magicLo byte = 0x49 // 'I'

	versionV1 byte = 0x01

	respOK       byte = 0x00
	respRejected byte = 0x01

	headerLen = 10
)

// ErrRejected is returned when the endpoint refuses a packet.
var ErrRejected = errors.New("writer ingest: rejected")

// EndpointClient speaks Raw Ingest v1 over one TCP connection.
// The connection is dialed lazily and dropped after any I/O error;
// the next write redials.
type EndpointClient struct {
	endpoint string
	timeout  time.Duration
	dial     func(network, address string, timeout time.Duration) (net.Conn, error)

	mu   sync.Mutex
	conn net.Conn
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer ingest: endpoint required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	return &EndpointClient{
		endpoint: cfg.Endpoint,
		timeout:  cfg.Timeout,
		dial:     net.DialTimeout,
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropLocked()
}

// WriteRegisters sends one register block. Area 3 (holding) or 4 (input).
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if area != 3 && area != 4 {
		return fmt.Errorf("writer ingest: unsupported register area %d", area)
	}

	pkt := buildPacketV1(area, unitID, addr, uint16(len(regs)), packRegisters(regs))

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.roundTripLocked(pkt); err != nil {
		if !errors.Is(err, ErrRejected) {
			_ = c.dropLocked()
		}
		return err
	}
	return nil
}

func (c *EndpointClient) roundTripLocked(pkt []byte) error {
	if c.conn == nil {
		conn, err := c.dial("tcp", c.endpoint, c.timeout)
		if err != nil {
			return fmt.Errorf("writer ingest: dial: %w", err)
		}
		c.conn = conn
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	if err := writeAll(c.conn, pkt); err != nil {
		return fmt.Errorf("writer ingest: write: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.timeout))
	var resp [1]byte
	if _, err := io.ReadFull(c.conn, resp[:]); err != nil {
		return fmt.Errorf("writer ingest: read status: %w", err)
	}

	switch resp[0] {
	case respOK:
		return nil
	case respRejected:
		return ErrRejected
	default:
		return fmt.Errorf("writer ingest: unknown status 0x%02x", resp[0])
	}
}

func (c *EndpointClient) dropLocked() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// buildPacketV1 lays out the 10-byte header followed by the payload:
//
//	0-1  magic "RI"
//	2    version
//	3    area
//	4-5  unit id
//	6-7  address
//	8-9  register count
func buildPacketV1(area byte, unitID uint8, addr, count uint16, payload []byte) []byte {
	pkt := make([]byte, headerLen, headerLen+len(payload))

	pkt[0] = magicHi
	pkt[1] = magicLo
	pkt[2] = versionV1
	pkt[3] = area

	putU16(pkt[4:6], uint16(unitID))
	putU16(pkt[6:8], addr)
	putU16(pkt[8:10], count)

	return append(pkt, payload...)
}

func writeAll(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}

func putU16(dst []byte, v uint16) {
	dst[0] = byte(v >> 8)
	dst[1] = byte(v)
}

// Register memory order is big-endian, as on the Modbus wire.
func packRegisters(regs []uint16) []byte {
	out := make([]byte, len(regs)*2)
	for i, r := range regs {
		putU16(out[2*i:], r)
	}
	return out
}
