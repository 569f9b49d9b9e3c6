// internal/config/validate.go
package config

import (
	"fmt"

	"github.com/tamzrod/encoder-monitor/internal/measurement"
	"github.com/tamzrod/encoder-monitor/internal/status"
)

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	type span struct {
		start uint32
		end   uint32
		unit  string
	}

	if len(cfg.Monitor.Units) == 0 {
		return fmt.Errorf("monitor: at least one unit is required")
	}
	if cfg.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt: qos %d out of range 0..2", cfg.MQTT.QoS)
	}
	if cfg.MQTT.PublishIntervalMs <= 0 {
		return fmt.Errorf("mqtt: publish_interval_ms must be > 0")
	}
	if err := validTransport(cfg.Monitor.StatusMemory.Transport); err != nil {
		return fmt.Errorf("status_memory: %w", err)
	}

	// ------------------------------------------------------------
	// UNIT SOURCE + SAMPLING VALIDATION
	// ------------------------------------------------------------

	seen := make(map[string]struct{})

	for _, u := range cfg.Monitor.Units {
		if u.ID == "" {
			return fmt.Errorf("unit: id is required")
		}
		if _, dup := seen[u.ID]; dup {
			return fmt.Errorf("unit %q: duplicate id", u.ID)
		}
		seen[u.ID] = struct{}{}

		if u.Serial.Device == "" {
			return fmt.Errorf("unit %q: serial.device is required", u.ID)
		}
		if u.Serial.BaudRate <= 0 {
			return fmt.Errorf("unit %q: serial.baud_rate must be > 0", u.ID)
		}
		if u.Serial.ReadTimeoutMs <= 0 {
			return fmt.Errorf("unit %q: serial.read_timeout_ms must be > 0", u.ID)
		}
		if u.SampleBits < 1 || u.SampleBits > measurement.MaxSampleBits {
			return fmt.Errorf(
				"unit %q: sample_bits %d out of range 1..%d",
				u.ID,
				u.SampleBits,
				measurement.MaxSampleBits,
			)
		}
		if u.HistoryCapacity < 1 {
			return fmt.Errorf("unit %q: history_capacity must be >= 1", u.ID)
		}
		if u.Poll.IntervalMs <= 0 {
			return fmt.Errorf("unit %q: poll.interval_ms must be > 0", u.ID)
		}

		for _, t := range u.Targets {
			if t.Endpoint == "" {
				return fmt.Errorf("unit %q: target %d has no endpoint", u.ID, t.ID)
			}
			if err := validTransport(t.Transport); err != nil {
				return fmt.Errorf("unit %q: target %q: %w", u.ID, t.Endpoint, err)
			}
			if len(t.Memories) == 0 {
				return fmt.Errorf("unit %q: target %q has no memories", u.ID, t.Endpoint)
			}
		}
	}

	// One client is built per endpoint, so an endpoint has one transport.
	transports := make(map[string]string)
	if ep := cfg.Monitor.StatusMemory.Endpoint; ep != "" {
		transports[ep] = cfg.Monitor.StatusMemory.Transport
	}
	for _, u := range cfg.Monitor.Units {
		for _, t := range u.Targets {
			if prev, ok := transports[t.Endpoint]; ok && prev != t.Transport {
				return fmt.Errorf(
					"endpoint %q: transport %q conflicts with %q",
					t.Endpoint, t.Transport, prev,
				)
			}
			transports[t.Endpoint] = t.Transport
		}
	}

	// ------------------------------------------------------------
	// DEVICE STATUS BLOCK VALIDATION (OPT-IN)
	// ------------------------------------------------------------

	// key = status endpoint | unit_id | slot
	statusOwner := make(map[string]string)

	for _, u := range cfg.Monitor.Units {
		if u.Status == nil {
			continue
		}

		if cfg.Monitor.StatusMemory.Endpoint == "" {
			return fmt.Errorf(
				"unit %q: status is set but monitor.status_memory.endpoint is empty",
				u.ID,
			)
		}

		// device_name sanity (ASCII only)
		for i := 0; i < len(u.Status.DeviceName); i++ {
			if u.Status.DeviceName[i] > 0x7F {
				return fmt.Errorf(
					"unit %q: device_name must contain ASCII characters only",
					u.ID,
				)
			}
		}

		if (uint32(u.Status.Slot)+1)*status.SlotsPerDevice > 0x10000 {
			return fmt.Errorf("unit %q: status slot %d exceeds register space", u.ID, u.Status.Slot)
		}

		key := fmt.Sprintf(
			"%s|%d|%d",
			cfg.Monitor.StatusMemory.Endpoint,
			u.Status.UnitID,
			u.Status.Slot,
		)

		if prev, exists := statusOwner[key]; exists {
			return fmt.Errorf(
				"status slot collision: endpoint=%s unit_id=%d slot=%d used by units %q and %q",
				cfg.Monitor.StatusMemory.Endpoint,
				u.Status.UnitID,
				u.Status.Slot,
				prev,
				u.ID,
			)
		}

		statusOwner[key] = u.ID
	}

	// ------------------------------------------------------------
	// DESTINATION MEMORY GEOMETRY VALIDATION
	// ------------------------------------------------------------

	// key = endpoint | memory_id
	spans := make(map[string][]span)

	for _, u := range cfg.Monitor.Units {
		for _, t := range u.Targets {
			for _, m := range t.Memories {
				start := uint32(m.Address)
				end := start + status.MeasurementSlots - 1

				if end > 0xFFFF {
					return fmt.Errorf(
						"unit %q: target %q memory %d: address %d leaves no room for %d registers",
						u.ID, t.Endpoint, m.MemoryID, m.Address, status.MeasurementSlots,
					)
				}

				key := fmt.Sprintf("%s|%d", t.Endpoint, m.MemoryID)

				for _, s := range spans[key] {
					// overlap check (inclusive)
					if !(end < s.start || start > s.end) {
						return fmt.Errorf(
							"memory overlap: endpoint=%s memory_id=%d range=%d-%d overlaps with unit=%s range=%d-%d",
							t.Endpoint,
							m.MemoryID,
							start,
							end,
							s.unit,
							s.start,
							s.end,
						)
					}
				}

				spans[key] = append(spans[key], span{
					start: start,
					end:   end,
					unit:  u.ID,
				})
			}
		}
	}

	return nil
}

func validTransport(t string) error {
	switch t {
	case TransportModbus, TransportIngest:
		return nil
	default:
		return fmt.Errorf("unsupported transport %q", t)
	}
}
