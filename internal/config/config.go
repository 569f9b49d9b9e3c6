// internal/config/config.go
package config

type Config struct {
	Monitor MonitorConfig `yaml:"monitor"`
	MQTT    MQTTConfig    `yaml:"mqtt"`
	Log     LogConfig     `yaml:"log"`
}

type MonitorConfig struct {
	StatusMemory StatusMemoryConfig `yaml:"status_memory"`
	Units        []UnitConfig       `yaml:"units"`
}

type StatusMemoryConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Transport string `yaml:"transport"`
}

// ---- UNIT ----

type UnitConfig struct {
	ID              string         `yaml:"id"`
	Serial          SerialConfig   `yaml:"serial"`
	SampleBits      uint           `yaml:"sample_bits"`
	HistoryCapacity int            `yaml:"history_capacity"`
	Poll            PollConfig     `yaml:"poll"`
	Status          *StatusConfig  `yaml:"status"`
	Targets         []TargetConfig `yaml:"targets"`
}

// ---- SOURCE ----

// LoopbackDevice selects the in-memory simulated encoder instead of a port.
const LoopbackDevice = "loopback"

type SerialConfig struct {
	Device        string `yaml:"device"`
	BaudRate      int    `yaml:"baud_rate"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- DEVICE STATUS (optional, opt-in) ----

type StatusConfig struct {
	UnitID     uint8  `yaml:"unit_id"`
	Slot       uint16 `yaml:"slot"`
	DeviceName string `yaml:"device_name"`
}

// ---- TARGET ----

const (
	TransportModbus = "modbus"
	TransportIngest = "ingest"
)

type TargetConfig struct {
	ID        uint32         `yaml:"id"`
	Endpoint  string         `yaml:"endpoint"`
	Transport string         `yaml:"transport"`
	TimeoutMs int            `yaml:"timeout_ms"`
	Memories  []MemoryConfig `yaml:"memories"`
}

type MemoryConfig struct {
	MemoryID uint8  `yaml:"memory_id"` // Modbus unit id at the endpoint
	Address  uint16 `yaml:"address"`   // first holding register of the measurement block
}

// ---- POLL ----

type PollConfig struct {
	IntervalMs int `yaml:"interval_ms"`
}

// ---- MQTT (optional) ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         byte   `yaml:"qos"`

	// PublishIntervalMs throttles readouts; the newest result wins.
	PublishIntervalMs int `yaml:"publish_interval_ms"`
}

// Enabled reports whether readouts should be published.
func (m MQTTConfig) Enabled() bool { return m.Broker != "" }

// ---- LOG ----

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}
