package modbus

import (
	"errors"
	"testing"

	"github.com/goburrow/modbus"
	"github.com/stretchr/testify/require"
)

type fc16Call struct {
	slave   byte
	addr    uint16
	qty     uint16
	payload []byte
}

// fakeClient records FC16 requests; other function codes are unused.
type fakeClient struct {
	modbus.Client
	h     *modbus.TCPClientHandler
	calls []fc16Call
	err   error
}

func (f *fakeClient) WriteMultipleRegisters(addr, qty uint16, value []byte) ([]byte, error) {
	f.calls = append(f.calls, fc16Call{f.h.SlaveId, addr, qty, value})
	return nil, f.err
}

func newFake(t *testing.T) (*EndpointClient, *fakeClient) {
	t.Helper()
	c, err := NewEndpointClient(Config{Endpoint: "127.0.0.1:1502"})
	require.NoError(t, err)

	f := &fakeClient{h: c.handler}
	c.client = f
	return c, f
}

func TestWriteRegistersFC16(t *testing.T) {
	c, f := newFake(t)

	require.NoError(t, c.WriteRegisters(3, 7, 100, []uint16{0x0102, 0xA0B0}))
	require.Equal(t, []fc16Call{{7, 100, 2, []byte{0x01, 0x02, 0xA0, 0xB0}}}, f.calls)
}

func TestWriteRegistersRejectsInputArea(t *testing.T) {
	c, f := newFake(t)

	require.Error(t, c.WriteRegisters(4, 1, 0, []uint16{1}))
	require.Empty(t, f.calls)
}

func TestWriteRegistersLimits(t *testing.T) {
	c, f := newFake(t)

	require.NoError(t, c.WriteRegisters(3, 1, 0, nil))
	require.Error(t, c.WriteRegisters(3, 1, 0, make([]uint16, maxWriteQuantity+1)))
	require.Empty(t, f.calls)
}

func TestWriteRegistersWrapsErrors(t *testing.T) {
	c, f := newFake(t)

	f.err = &modbus.ModbusError{FunctionCode: 16, ExceptionCode: modbus.ExceptionCodeIllegalDataAddress}
	err := c.WriteRegisters(3, 1, 9, []uint16{1})

	var mbErr *modbus.ModbusError
	require.True(t, errors.As(err, &mbErr))
	require.Contains(t, err.Error(), "unit=1 addr=9")
}

func TestNewEndpointClientRequiresEndpoint(t *testing.T) {
	_, err := NewEndpointClient(Config{})
	require.Error(t, err)
}
