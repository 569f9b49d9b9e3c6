// internal/writer/writer.go
package writer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tamzrod/encoder-monitor/internal/poller"
	"github.com/tamzrod/encoder-monitor/internal/status"
)

// endpointClient is the exact contract the writers use.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(area byte, unitID uint8, addr uint16, regs []uint16) error
}

type writerImpl struct {
	plan    Plan
	clients map[string]endpointClient
}

func New(plan Plan, clients map[string]endpointClient) Writer {
	return &writerImpl{
		plan:    plan,
		clients: clients,
	}
}

// Write delivers the measurement block to every target memory.
// Failed cycles write nothing here; the status block reports them.
// Every target is attempted; errors are joined.
func (w *writerImpl) Write(res poller.PollResult) error {
	if !res.OK() {
		return nil
	}

	regs := status.EncodeMeasurement(*res.Measurement, w.plan.SampleBits)

	var errs []string

	for _, tgt := range w.plan.Targets {
		cli := w.clients[tgt.Endpoint]
		if cli == nil {
			errs = append(errs, fmt.Sprintf(
				"writer: missing client for endpoint %s",
				tgt.Endpoint,
			))
			continue
		}

		for _, mem := range tgt.Memories {
			if err := cli.WriteRegisters(AreaHoldingRegisters, mem.MemoryID, mem.Address, regs[:]); err != nil {
				errs = append(errs, fmt.Sprintf(
					"writer: ep=%s unit=%d addr=%d err=%v",
					tgt.Endpoint, mem.MemoryID, mem.Address, err,
				))
			}
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, " | "))
	}

	return nil
}
