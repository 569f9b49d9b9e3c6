// internal/writer/modbus/client.go
package modbus

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"
)

const areaHoldingRegisters byte = 3

// maxWriteQuantity is the FC16 per-request register limit.
const maxWriteQuantity = 123

// EndpointClient holds one Modbus TCP connection to a target endpoint.
// Requests are serialized since SlaveId changes per memory. The socket
// opens on first use and is dropped after a transport error, so a target
// that is down at startup does not stop the unit.
type EndpointClient struct {
	endpoint string

	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client
}

type Config struct {
	Endpoint string
	Timeout  time.Duration
}

func NewEndpointClient(cfg Config) (*EndpointClient, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("writer modbus: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout

	return &EndpointClient{
		endpoint: cfg.Endpoint,
		handler:  h,
		client:   modbus.NewClient(h),
	}, nil
}

func (c *EndpointClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler.Close()
}

// WriteRegisters writes regs into holding registers with FC16.
func (c *EndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if area != areaHoldingRegisters {
		return fmt.Errorf("writer modbus: area %d is read-only over modbus", area)
	}
	if len(regs) == 0 {
		return nil
	}
	if len(regs) > maxWriteQuantity {
		return fmt.Errorf("writer modbus: %d registers exceeds FC16 limit %d", len(regs), maxWriteQuantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.handler.SlaveId = unitID

	_, err := c.client.WriteMultipleRegisters(addr, uint16(len(regs)), packRegisters(regs))
	if err == nil {
		return nil
	}

	// An exception response means the link is fine; anything else
	// leaves the stream in an unknown state.
	var mbErr *modbus.ModbusError
	if !errors.As(err, &mbErr) {
		_ = c.handler.Close()
	}
	return fmt.Errorf("writer modbus: %s unit=%d addr=%d: %w", c.endpoint, unitID, addr, err)
}

func packRegisters(regs []uint16) []byte {
	out := make([]byte, 0, len(regs)*2)
	for _, r := range regs {
		out = append(out, byte(r>>8), byte(r))
	}
	return out
}
