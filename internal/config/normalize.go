// internal/config/normalize.go
package config

import (
	"github.com/tamzrod/encoder-monitor/internal/history"
	"github.com/tamzrod/encoder-monitor/internal/measurement"
	"github.com/tamzrod/encoder-monitor/internal/status"
)

const (
	DefaultBaudRate      = 115200
	DefaultReadTimeoutMs = 50
	DefaultIntervalMs    = 10
	DefaultTargetTimeout = 1000
	DefaultTopicPrefix   = "encoders"
	DefaultLogLevel      = "info"
	DefaultPublishMs     = 100
)

// Normalize fills defaults for omitted fields.
// It is allowed to mutate configuration.
// It MUST be called before Validate(), so range checks see the defaults.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefaultTopicPrefix
	}
	if cfg.MQTT.PublishIntervalMs == 0 {
		cfg.MQTT.PublishIntervalMs = DefaultPublishMs
	}
	if cfg.Monitor.StatusMemory.Transport == "" {
		cfg.Monitor.StatusMemory.Transport = TransportModbus
	}

	for ui := range cfg.Monitor.Units {
		u := &cfg.Monitor.Units[ui]

		if u.Serial.BaudRate == 0 {
			u.Serial.BaudRate = DefaultBaudRate
		}
		if u.Serial.ReadTimeoutMs == 0 {
			u.Serial.ReadTimeoutMs = DefaultReadTimeoutMs
		}
		if u.SampleBits == 0 {
			u.SampleBits = measurement.DefaultSampleBits
		}
		if u.HistoryCapacity == 0 {
			u.HistoryCapacity = history.DefaultCapacity
		}
		if u.Poll.IntervalMs == 0 {
			u.Poll.IntervalMs = DefaultIntervalMs
		}

		for ti := range u.Targets {
			t := &u.Targets[ti]
			if t.Transport == "" {
				t.Transport = TransportModbus
			}
			if t.TimeoutMs == 0 {
				t.TimeoutMs = DefaultTargetTimeout
			}
		}

		// Device name is stored in a fixed register range; non-ASCII is
		// left for Validate to reject.
		if u.Status != nil && len(u.Status.DeviceName) > status.DeviceNameMaxChars {
			u.Status.DeviceName = u.Status.DeviceName[:status.DeviceNameMaxChars]
		}
	}
}
