// internal/poller/readout.go
package poller

import (
	"fmt"

	"github.com/tamzrod/encoder-monitor/internal/measurement"
)

// Status texts shown next to "Status:".
const (
	StatusOK     = "OK"
	StatusFailed = "Error reading sample"
	StatusNoData = "No data"
)

// Indicator is a tri-state flag: a failed cycle reports Unknown rather
// than the previous cycle's value.
type Indicator uint8

const (
	IndicatorUnknown Indicator = iota
	IndicatorOK
	IndicatorAsserted
)

func (i Indicator) String() string {
	switch i {
	case IndicatorOK:
		return "OK"
	case IndicatorAsserted:
		return "ERR"
	default:
		return "---"
	}
}

// MarshalText renders the indicator the way it is displayed.
func (i Indicator) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

func (i *Indicator) UnmarshalText(b []byte) error {
	switch string(b) {
	case "OK":
		*i = IndicatorOK
	case "ERR":
		*i = IndicatorAsserted
	case "---":
		*i = IndicatorUnknown
	default:
		return fmt.Errorf("poller: unknown indicator %q", b)
	}
	return nil
}

// Readout is everything a display needs for one cycle.
type Readout struct {
	Status  string    `json:"status"`
	Valid   bool      `json:"valid"`
	CRC     Indicator `json:"crc"`
	Error   Indicator `json:"error"`
	Warning Indicator `json:"warning"`

	Position uint32          `json:"position"`
	Turns    int32           `json:"turns"`
	Degrees  float64         `json:"degrees"`
	Angle    measurement.DMS `json:"angle"`
}

// Readout derives the display view of r.
// "No data" means nothing was ever recorded; "Error reading sample"
// means this cycle failed after at least one success.
func (r PollResult) Readout() Readout {
	if !r.OK() {
		status := StatusFailed
		if len(r.History) == 0 {
			status = StatusNoData
		}
		return Readout{Status: status}
	}

	m := r.Measurement
	deg := measurement.Degrees(m.Position, r.SampleBits)

	return Readout{
		Status:   StatusOK,
		Valid:    true,
		CRC:      indicator(!m.CRCOK),
		Error:    indicator(m.Error),
		Warning:  indicator(m.Warning),
		Position: m.Position,
		Turns:    m.Turns,
		Degrees:  deg,
		Angle:    measurement.ToDMS(deg),
	}
}

func indicator(asserted bool) Indicator {
	if asserted {
		return IndicatorAsserted
	}
	return IndicatorOK
}
