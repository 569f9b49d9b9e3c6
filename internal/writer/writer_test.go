// internal/writer/writer_test.go
package writer

import (
	"errors"
	"strings"
	"testing"

	"github.com/tamzrod/encoder-monitor/internal/measurement"
	"github.com/tamzrod/encoder-monitor/internal/poller"
	"github.com/tamzrod/encoder-monitor/internal/status"
)

// ---- fake endpoint client ----

type writeCall struct {
	area   byte
	unitID uint8
	addr   uint16
	regs   []uint16
}

type fakeEndpointClient struct {
	writes []writeCall
	fail   error

	lastRegs     []uint16
	lastRegsAddr uint16
}

func (f *fakeEndpointClient) WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error {
	if f.fail != nil {
		return f.fail
	}
	cp := append([]uint16(nil), regs...)
	f.writes = append(f.writes, writeCall{area: area, unitID: unitID, addr: addr, regs: cp})
	f.lastRegs = cp
	f.lastRegsAddr = addr
	return nil
}

func okResult() poller.PollResult {
	return poller.PollResult{
		UnitID:      "enc-1",
		Measurement: &measurement.Measurement{Position: 0x23D9, Turns: 3, CRCOK: true},
	}
}

// ---- tests ----

func TestWriter_FansOutToEveryMemory(t *testing.T) {
	a := &fakeEndpointClient{}
	b := &fakeEndpointClient{}

	plan := Plan{
		UnitID:     "enc-1",
		SampleBits: 18,
		Targets: []TargetEndpoint{
			{TargetID: 1, Endpoint: "ep-a", Memories: []MemoryDest{{MemoryID: 1, Address: 100}, {MemoryID: 2, Address: 0}}},
			{TargetID: 2, Endpoint: "ep-b", Memories: []MemoryDest{{MemoryID: 9, Address: 40}}},
		},
	}

	w := New(plan, map[string]endpointClient{"ep-a": a, "ep-b": b})
	if err := w.Write(okResult()); err != nil {
		t.Fatalf("write: %v", err)
	}

	if len(a.writes) != 2 || len(b.writes) != 1 {
		t.Fatalf("expected 2+1 writes, got %d+%d", len(a.writes), len(b.writes))
	}

	want := status.EncodeMeasurement(*okResult().Measurement, 18)

	got := a.writes[0]
	if got.area != AreaHoldingRegisters || got.unitID != 1 || got.addr != 100 {
		t.Fatalf("unexpected first write: %+v", got)
	}
	if len(got.regs) != status.MeasurementSlots {
		t.Fatalf("expected %d regs, got %d", status.MeasurementSlots, len(got.regs))
	}
	for i := range want {
		if got.regs[i] != want[i] {
			t.Fatalf("reg %d: got %d want %d", i, got.regs[i], want[i])
		}
	}

	if b.writes[0].unitID != 9 || b.writes[0].addr != 40 {
		t.Fatalf("unexpected ep-b write: %+v", b.writes[0])
	}
}

func TestWriter_SkipsFailedCycles(t *testing.T) {
	cli := &fakeEndpointClient{}
	plan := Plan{
		SampleBits: 18,
		Targets:    []TargetEndpoint{{Endpoint: "ep", Memories: []MemoryDest{{MemoryID: 1}}}},
	}

	w := New(plan, map[string]endpointClient{"ep": cli})
	res := poller.PollResult{UnitID: "enc-1", Err: poller.ErrTimeout}

	if err := w.Write(res); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(cli.writes) != 0 {
		t.Fatalf("failed cycle must not touch targets, got %d writes", len(cli.writes))
	}
}

func TestWriter_JoinsErrorsAndContinues(t *testing.T) {
	bad := &fakeEndpointClient{fail: errors.New("boom")}
	good := &fakeEndpointClient{}

	plan := Plan{
		SampleBits: 18,
		Targets: []TargetEndpoint{
			{Endpoint: "bad", Memories: []MemoryDest{{MemoryID: 1}}},
			{Endpoint: "missing", Memories: []MemoryDest{{MemoryID: 1}}},
			{Endpoint: "good", Memories: []MemoryDest{{MemoryID: 1}}},
		},
	}

	w := New(plan, map[string]endpointClient{"bad": bad, "good": good})
	err := w.Write(okResult())
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "boom") || !strings.Contains(err.Error(), "missing client") {
		t.Fatalf("expected both failures in %q", err)
	}
	if len(good.writes) != 1 {
		t.Fatalf("good target should still be written")
	}
}
