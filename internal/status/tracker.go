// internal/status/tracker.go
package status

import (
	"math"

	"github.com/tamzrod/encoder-monitor/internal/measurement"
)

// Tracker is the runner-owned status state for one unit.
// Not safe for concurrent use.
type Tracker struct {
	bits uint
	snap Snapshot
}

// NewTracker starts in HealthUnknown.
func NewTracker(sampleBits uint) *Tracker {
	return &Tracker{
		bits: sampleBits,
		snap: Snapshot{Health: HealthUnknown},
	}
}

// Snapshot returns the current state.
func (t *Tracker) Snapshot() Snapshot { return t.snap }

// Observe folds one poll outcome into the status.
// m is nil exactly when err is non-nil. recorded reports whether the
// history holds any value, which separates "never measured" from
// "last read failed".
func (t *Tracker) Observe(m *measurement.Measurement, err error, recorded bool) (Snapshot, bool) {
	next := t.snap

	if m != nil {
		next.Measurement = EncodeMeasurement(*m, t.bits)
		next.LastErrorCode = MeasurementCode(*m)
		if m.CRCOK {
			next.Health = HealthOK
			// Reset seconds-in-error on recovery.
			next.SecondsInError = 0
		} else {
			next.Health = HealthStale
		}
	} else {
		if recorded {
			next.Health = HealthError
		} else {
			next.Health = HealthUnknown
		}
		next.LastErrorCode = ErrorCode(err)
		// Position stays at its last value; flags become unknown.
		next.Measurement[MeasFlags] = 0
	}

	changed := next != t.snap
	t.snap = next
	return next, changed
}

// Tick advances seconds_in_error; call at 1 Hz.
// NOTE: seconds_in_error increments on the ticker only and never wraps.
func (t *Tracker) Tick() (Snapshot, bool) {
	if t.snap.Health == HealthOK || t.snap.SecondsInError >= math.MaxUint16 {
		return t.snap, false
	}
	t.snap.SecondsInError++
	return t.snap, true
}
