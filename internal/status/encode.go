// internal/status/encode.go
package status

import (
	"errors"
	"math"

	"github.com/tamzrod/encoder-monitor/internal/measurement"
)

// Encode converts a Snapshot into a full device status block.
// Layout is protocol-locked. The device name slots are left to the writer.
// No IO. No side effects.
func Encode(s Snapshot) []uint16 {
	regs := make([]uint16, SlotsPerDevice)

	regs[SlotHealthCode] = s.Health
	regs[SlotLastErrorCode] = s.LastErrorCode
	regs[SlotSecondsInError] = s.SecondsInError
	copy(regs[SlotMeasurementStart:], s.Measurement[:])

	return regs
}

// EncodeMeasurement packs one measurement into the measurement range.
func EncodeMeasurement(m measurement.Measurement, bits uint) [MeasurementSlots]uint16 {
	var regs [MeasurementSlots]uint16

	regs[MeasPositionHi] = uint16(m.Position >> 16)
	regs[MeasPositionLo] = uint16(m.Position)
	regs[MeasTurns] = uint16(m.Turns)

	flags := FlagValid
	if m.CRCOK {
		flags |= FlagCRCOK
	}
	if m.Error {
		flags |= FlagError
	}
	if m.Warning {
		flags |= FlagWarning
	}
	regs[MeasFlags] = flags

	a := measurement.ToDMS(measurement.Degrees(m.Position, bits))
	regs[MeasDegrees] = uint16(a.Degrees)
	regs[MeasMinutes] = uint16(a.Minutes)
	regs[MeasCentiSeconds] = uint16(math.Floor(a.Seconds * 100))

	return regs
}

// ErrorCode extracts a best-effort uint16 code from an error without assuming concrete types.
// If the error does not expose a code, returns ErrCodeGeneric.
func ErrorCode(err error) uint16 {
	if err == nil {
		return ErrCodeNone
	}

	type coder interface{ Code() uint16 }

	var c coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return ErrCodeGeneric
}

// MeasurementCode ranks what a decoded sample reports: integrity first,
// then the encoder's own error and warning flags.
func MeasurementCode(m measurement.Measurement) uint16 {
	switch {
	case !m.CRCOK:
		return ErrCodeIntegrity
	case m.Error:
		return ErrCodeEncoder
	case m.Warning:
		return ErrCodeWarning
	default:
		return ErrCodeNone
	}
}
