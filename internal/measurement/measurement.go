// internal/measurement/measurement.go
package measurement

import (
	"errors"
	"fmt"
	"math"

	"github.com/tamzrod/encoder-monitor/internal/crc8"
	"github.com/tamzrod/encoder-monitor/internal/frame"
)

// DefaultSampleBits is the angular resolution of the reference encoder.
const DefaultSampleBits uint = 18

// MaxSampleBits keeps the two flag bits of b4 out of the position.
const MaxSampleBits uint = 22

// positionFieldBits is the width of b2:b3:b4 before the shift.
const positionFieldBits = 24

const (
	flagMask    byte = 0x03
	errorBit    byte = 0x02
	warningBit  byte = 0x01
	turnsSignAt      = 0x8000
)

// ErrIntegrity marks a sample whose check byte did not validate.
// The sample is still decoded; see Measurement.Integrity.
var ErrIntegrity = errors.New("crc mismatch")

// Measurement is one decoded sample. Treat as immutable.
type Measurement struct {
	Position uint32 // 0 .. 2^N-1
	Turns    int32
	CRCOK    bool
	Error    bool // encoder error asserted (active-low on the wire)
	Warning  bool // encoder warning asserted (active-low on the wire)
}

// Integrity returns ErrIntegrity when the check byte failed.
func (m Measurement) Integrity() error {
	if !m.CRCOK {
		return ErrIntegrity
	}
	return nil
}

// Decoder extracts measurements for a fixed sample width.
type Decoder struct {
	Bits uint
}

// NewDecoder validates the sample width.
func NewDecoder(bits uint) (Decoder, error) {
	if bits < 1 || bits > MaxSampleBits {
		return Decoder{}, fmt.Errorf("measurement: sample bits %d out of range 1..%d", bits, MaxSampleBits)
	}
	return Decoder{Bits: bits}, nil
}

// Decode is pure: the same sample always yields the same Measurement.
func (d Decoder) Decode(s frame.Sample) Measurement {
	turnsRaw := int32(s[0])<<8 | int32(s[1])
	if turnsRaw >= turnsSignAt {
		turnsRaw -= 1 << 16
	}

	positionRaw := uint32(s[2])<<16 | uint32(s[3])<<8 | uint32(s[4]&^flagMask)

	return Measurement{
		Position: positionRaw >> (positionFieldBits - d.Bits),
		Turns:    turnsRaw,
		CRCOK:    crc8.Valid(s[:]),
		Error:    s[4]&errorBit == 0,
		Warning:  s[4]&warningBit == 0,
	}
}

// Encode builds the wire sample Decode would turn back into m.
// A Measurement with CRCOK=false gets a deliberately wrong check byte.
func (d Decoder) Encode(m Measurement) frame.Sample {
	var s frame.Sample

	turns := uint16(m.Turns)
	s[0] = byte(turns >> 8)
	s[1] = byte(turns)

	pos := (m.Position & (1<<d.Bits - 1)) << (positionFieldBits - d.Bits)
	s[2] = byte(pos >> 16)
	s[3] = byte(pos >> 8)
	s[4] = byte(pos) &^ flagMask
	if !m.Error {
		s[4] |= errorBit
	}
	if !m.Warning {
		s[4] |= warningBit
	}

	s[5] = crc8.Trailer(s[:5])
	if !m.CRCOK {
		s[5] ^= 0x01
	}
	return s
}

// Angle converts a raw position to degrees/minutes/seconds.
func (d Decoder) Angle(position uint32) DMS {
	return ToDMS(Degrees(position, d.Bits))
}

// Degrees converts a raw position at the given sample width to degrees.
func Degrees(position uint32, bits uint) float64 {
	return 360.0 * float64(position) / float64(uint64(1)<<bits)
}

// DMS is an angle split into whole degrees, whole minutes and seconds.
type DMS struct {
	Degrees int     `json:"degrees"`
	Minutes int     `json:"minutes"`
	Seconds float64 `json:"seconds"`
}

// ToDMS truncates with floor; deg is never negative here.
func ToDMS(deg float64) DMS {
	whole := math.Floor(deg)
	minRaw := (deg - whole) * 60
	minutes := math.Floor(minRaw)
	return DMS{
		Degrees: int(whole),
		Minutes: int(minutes),
		Seconds: (minRaw - minutes) * 60,
	}
}

func (a DMS) String() string {
	return fmt.Sprintf("%d° %d' %.2f\"", a.Degrees, a.Minutes, a.Seconds)
}
