// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/encoder-monitor/internal/status"
)

func newStatusWriter(t *testing.T, cli *fakeEndpointClient, slot uint16) *deviceStatusWriter {
	t.Helper()

	plan := Plan{
		Status: &StatusPlan{
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   slot,
			DeviceName: "ENC-01",
		},
	}

	sw, enabled := NewDeviceStatusWriter(plan, map[string]endpointClient{"status-endpoint": cli})
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}
	return sw
}

func TestStatusWriterDisabledWithoutPlan(t *testing.T) {
	if _, enabled := NewDeviceStatusWriter(Plan{}, nil); enabled {
		t.Fatalf("expected disabled status writer")
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newStatusWriter(t, cli, 2)

	first := status.Snapshot{Health: status.HealthOK}
	first.Measurement[status.MeasPositionLo] = 0x23D9

	if err := sw.WriteStatus(first); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice {
		t.Fatalf("expected base address %d, got %d", 2*status.SlotsPerDevice, cli.lastRegsAddr)
	}
	if cli.lastRegs[status.SlotMeasurementStart+status.MeasPositionLo] != 0x23D9 {
		t.Fatalf("measurement range missing from full block")
	}

	want := encodeDeviceNameRegs("ENC-01")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != want[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], want[i])
		}
	}

	// ---- second write: only health changes ----
	second := first
	second.Health = status.HealthError

	if err := sw.WriteStatus(second); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}
	if len(cli.lastRegs) != 1 {
		t.Fatalf("expected single-register write, got %d", len(cli.lastRegs))
	}
	if cli.lastRegsAddr != 2*status.SlotsPerDevice+status.SlotHealthCode {
		t.Fatalf("health written to wrong address %d", cli.lastRegsAddr)
	}
	if len(cli.writes) != 2 {
		t.Fatalf("expected 2 writes total, got %d", len(cli.writes))
	}
}

func TestMeasurementRangeWrittenIncrementally(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newStatusWriter(t, cli, 0)

	s := status.Snapshot{Health: status.HealthOK}
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("full assert: %v", err)
	}

	s.Measurement[status.MeasPositionLo] = 42
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("incremental: %v", err)
	}

	if cli.lastRegsAddr != status.SlotMeasurementStart {
		t.Fatalf("measurement written to %d", cli.lastRegsAddr)
	}
	if len(cli.lastRegs) != status.MeasurementSlots || cli.lastRegs[status.MeasPositionLo] != 42 {
		t.Fatalf("unexpected measurement regs %v", cli.lastRegs)
	}

	// unchanged snapshot writes nothing
	n := len(cli.writes)
	if err := sw.WriteStatus(s); err != nil {
		t.Fatalf("noop: %v", err)
	}
	if len(cli.writes) != n {
		t.Fatalf("unchanged snapshot should not write")
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newStatusWriter(t, cli, 0)

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("full assert: %v", err)
	}

	cli.fail = errors.New("link down")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: status.ErrCodeTimeout}); err == nil {
		t.Fatalf("expected write failure")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: status.ErrCodeTimeout}); err != nil {
		t.Fatalf("recovery write: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block after failure, got %d regs", len(cli.lastRegs))
	}
	if cli.lastRegs[status.SlotLastErrorCode] != status.ErrCodeTimeout {
		t.Fatalf("last error not carried in re-assert")
	}
}

func TestEncodeDeviceNameRegs(t *testing.T) {
	regs := encodeDeviceNameRegs("ABC\x01DEFGHIJKLMNOPQRS")

	if len(regs) != status.SlotDeviceNameSlots {
		t.Fatalf("expected %d regs, got %d", status.SlotDeviceNameSlots, len(regs))
	}
	if regs[0] != uint16('A')<<8|uint16('B') {
		t.Fatalf("reg0: got %04x", regs[0])
	}
	if regs[1] != uint16('C')<<8|uint16('?') {
		t.Fatalf("control byte not sanitized: %04x", regs[1])
	}
	if regs[7] != uint16('N')<<8|uint16('O') {
		t.Fatalf("name not truncated at 16 chars: %04x", regs[7])
	}

	short := encodeDeviceNameRegs("X")
	if short[0] != uint16('X')<<8 || short[1] != 0 {
		t.Fatalf("short name padding wrong: %v", short)
	}
}
