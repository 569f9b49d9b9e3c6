package emitter

import (
	"time"

	"github.com/tamzrod/encoder-monitor/internal/poller"
)

// Payload is the JSON body of a readout message.
type Payload struct {
	Unit       string         `json:"unit"`
	Seq        uint64         `json:"seq"`
	At         time.Time      `json:"at"`
	SampleBits uint           `json:"sample_bits"`
	Readout    poller.Readout `json:"readout"`

	Line  string `json:"line,omitempty"`
	Error string `json:"error,omitempty"`

	History []uint32 `json:"history"`
}

func BuildPayload(res poller.PollResult) Payload {
	p := Payload{
		Unit:       res.UnitID,
		Seq:        res.Seq,
		At:         res.At.UTC(),
		SampleBits: res.SampleBits,
		Readout:    res.Readout(),
		Line:       res.Line,
		History:    res.History,
	}
	if res.Err != nil {
		p.Error = res.Err.Error()
	}
	if p.History == nil {
		p.History = []uint32{}
	}
	return p
}
