// internal/writer/status_writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/encoder-monitor/internal/status"
)

// StatusWriter delivers a status snapshot verbatim.
type StatusWriter interface {
	WriteStatus(s status.Snapshot) error
}

// deviceStatusWriter writes one unit's block into status memory.
// After any failure the next call re-asserts the whole block.
type deviceStatusWriter struct {
	plan *StatusPlan
	cli  endpointClient

	needFull bool
	last     status.Snapshot
	nameRegs []uint16
}

// NewDeviceStatusWriter returns false when the unit has no status block.
func NewDeviceStatusWriter(plan Plan, clients map[string]endpointClient) (*deviceStatusWriter, bool) {
	if plan.Status == nil {
		return nil, false
	}

	sp := plan.Status
	return &deviceStatusWriter{
		plan:     sp,
		cli:      clients[sp.Endpoint],
		needFull: true,
		last:     status.Snapshot{Health: status.HealthUnknown},
		nameRegs: encodeDeviceNameRegs(sp.DeviceName),
	}, true
}

func (sw *deviceStatusWriter) WriteStatus(s status.Snapshot) error {
	if sw == nil || sw.plan == nil {
		return errors.New("status writer: disabled")
	}
	if sw.cli == nil {
		return fmt.Errorf("status writer: missing client for endpoint %s", sw.plan.Endpoint)
	}

	base := sw.baseAddr()

	if sw.needFull {
		if err := sw.cli.WriteRegisters(AreaHoldingRegisters, sw.plan.UnitID, base, sw.fullBlockRegs(s)); err != nil {
			return fmt.Errorf("status writer: full block write failed: %w", err)
		}
		sw.needFull = false
		sw.last = s
		return nil
	}

	var errs []string

	write := func(name string, slot int, regs []uint16) bool {
		err := sw.cli.WriteRegisters(AreaHoldingRegisters, sw.plan.UnitID, base+uint16(slot), regs)
		if err != nil {
			errs = append(errs, fmt.Sprintf("slot%d %s write failed: %v", slot, name, err))
			return false
		}
		return true
	}

	if sw.last.Health != s.Health && write("health", status.SlotHealthCode, []uint16{s.Health}) {
		sw.last.Health = s.Health
	}
	if sw.last.LastErrorCode != s.LastErrorCode && write("last_error", status.SlotLastErrorCode, []uint16{s.LastErrorCode}) {
		sw.last.LastErrorCode = s.LastErrorCode
	}
	if sw.last.SecondsInError != s.SecondsInError && write("seconds", status.SlotSecondsInError, []uint16{s.SecondsInError}) {
		sw.last.SecondsInError = s.SecondsInError
	}
	if sw.last.Measurement != s.Measurement && write("measurement", status.SlotMeasurementStart, s.Measurement[:]) {
		sw.last.Measurement = s.Measurement
	}

	if len(errs) > 0 {
		sw.needFull = true
		return errors.New("status writer: " + strings.Join(errs, " | "))
	}
	return nil
}

func (sw *deviceStatusWriter) baseAddr() uint16 {
	return sw.plan.BaseSlot * status.SlotsPerDevice
}

func (sw *deviceStatusWriter) fullBlockRegs(s status.Snapshot) []uint16 {
	regs := status.Encode(s)
	copy(regs[status.SlotDeviceNameStart:status.SlotDeviceNameEnd+1], sw.nameRegs)
	return regs
}

// encodeDeviceNameRegs packs up to 16 ASCII characters, two per register,
// high byte first. Non-printable bytes become '?'.
func encodeDeviceNameRegs(name string) []uint16 {
	out := make([]uint16, status.SlotDeviceNameSlots)

	b := []byte(name)
	if len(b) > status.DeviceNameMaxChars {
		b = b[:status.DeviceNameMaxChars]
	}

	for i := 0; i < len(b); i++ {
		if b[i] < 0x20 || b[i] > 0x7E {
			b[i] = '?'
		}
	}

	for i := 0; i < len(b); i += 2 {
		hi := b[i]
		var lo byte
		if i+1 < len(b) {
			lo = b[i+1]
		}
		out[i/2] = uint16(hi)<<8 | uint16(lo)
	}

	return out
}
