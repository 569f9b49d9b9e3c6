// internal/status/constants.go
package status

// Device Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the device health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the device has been in error.
const SlotSecondsInError = 2

// ---- MEASUREMENT ----

// SlotMeasurementStart is the first slot of the measurement range.
// Targets receive the same range at their configured address.
const SlotMeasurementStart = 3

// Offsets inside the measurement range.
const (
	MeasPositionHi   = 0 // position bits 31..16
	MeasPositionLo   = 1 // position bits 15..0
	MeasTurns        = 2 // two's complement
	MeasFlags        = 3 // Flag* bits
	MeasDegrees      = 4
	MeasMinutes      = 5
	MeasCentiSeconds = 6
)

// MeasurementSlots is the length of the measurement range.
const MeasurementSlots = 7

// Flag bits in the MeasFlags register. Valid clear means the other bits
// are unknown, not "no error".
const (
	FlagCRCOK   uint16 = 1 << 0
	FlagError   uint16 = 1 << 1
	FlagWarning uint16 = 1 << 2
	FlagValid   uint16 = 1 << 3
)

// ---- RESERVED RANGE ----

// Slot 10 is reserved for future use.
const SlotReservedStart = SlotMeasurementStart + MeasurementSlots
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents a boot state: nothing measured yet.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy encoder.
const HealthOK uint16 = 1

// HealthError represents a failed read after at least one success.
const HealthError uint16 = 2

// HealthStale represents a structurally valid sample that failed its CRC.
const HealthStale uint16 = 3

// HealthDisabled represents a disabled device state.
const HealthDisabled uint16 = 4

// ---- ERROR CODES ----

const (
	ErrCodeNone      uint16 = 0
	ErrCodeGeneric   uint16 = 1
	ErrCodeMalformed uint16 = 2
	ErrCodeTimeout   uint16 = 3
	ErrCodeIntegrity uint16 = 4
	ErrCodeChannel   uint16 = 5
	ErrCodeEncoder   uint16 = 6 // encoder error flag asserted
	ErrCodeWarning   uint16 = 7 // encoder warning flag asserted
)
