// internal/status/snapshot.go
package status

// Snapshot is one unit's status block minus the device name.
// Writers deliver it as-is.
type Snapshot struct {
	Health         uint16
	LastErrorCode  uint16
	SecondsInError uint16
	Measurement    [MeasurementSlots]uint16 // see Meas* offsets
}
