// internal/poller/serial/open.go
package serial

import (
	"time"

	"go.uber.org/zap"

	cfg "github.com/tamzrod/encoder-monitor/internal/config"
	"github.com/tamzrod/encoder-monitor/internal/measurement"
	"github.com/tamzrod/encoder-monitor/internal/poller"
)

// Opener returns the poller.OpenFunc used by the daemon.
// The device name "loopback" selects the simulated encoder.
func Opener(log *zap.Logger) poller.OpenFunc {
	return func(sc cfg.SerialConfig, sampleBits uint) (poller.Port, error) {
		if sc.Device == cfg.LoopbackDevice {
			dec, err := measurement.NewDecoder(sampleBits)
			if err != nil {
				return nil, err
			}
			if log != nil {
				log.Info("[serial] using loopback encoder", zap.Uint("sampleBits", sampleBits))
			}
			return NewLoopback(RotatingSource(dec)), nil
		}

		ch, err := Open(Config{
			Device:      sc.Device,
			BaudRate:    sc.BaudRate,
			ReadTimeout: time.Duration(sc.ReadTimeoutMs) * time.Millisecond,
		}, log)
		if err != nil {
			return nil, err
		}
		return ch, nil
	}
}
