// internal/poller/builder.go
package poller

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/encoder-monitor/internal/config"
)

// OpenFunc opens the link described by one unit's serial section.
type OpenFunc func(sc cfg.SerialConfig, sampleBits uint) (Port, error)

// Build opens the unit's channel and constructs its Poller.
// The channel is opened once (fail fast at startup); a channel failure
// later ends the unit rather than reconnecting.
func Build(u cfg.UnitConfig, open OpenFunc, log *zap.Logger) (*Poller, func() error, error) {
	port, err := open(u.Serial, u.SampleBits)
	if err != nil {
		return nil, nil, &ChannelError{Op: "open " + u.Serial.Device, Err: err}
	}

	p, err := New(
		Config{
			UnitID:          u.ID,
			Interval:        time.Duration(u.Poll.IntervalMs) * time.Millisecond,
			SampleBits:      u.SampleBits,
			HistoryCapacity: u.HistoryCapacity,
		},
		port,
		log,
	)
	if err != nil {
		_ = port.Close()
		return nil, nil, err
	}

	return p, port.Close, nil
}
