// internal/writer/types.go
package writer

import "github.com/tamzrod/encoder-monitor/internal/poller"

// AreaHoldingRegisters is the only area measurement blocks are written to.
const AreaHoldingRegisters byte = 3

// MemoryDest is one register memory (Modbus unit id) inside an endpoint.
type MemoryDest struct {
	MemoryID uint8
	Address  uint16 // first register of the measurement block
}

// TargetEndpoint is one target endpoint (TCP) with one or more memory destinations.
type TargetEndpoint struct {
	TargetID uint32
	Endpoint string
	Memories []MemoryDest
}

// StatusPlan locates the unit's device status block.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16
	DeviceName string
}

// Plan is the fully-built write plan for one unit.
type Plan struct {
	UnitID     string
	SampleBits uint
	Targets    []TargetEndpoint
	Status     *StatusPlan // nil: status block disabled
}

// Writer writes poll results into targets.
type Writer interface {
	Write(res poller.PollResult) error
}
