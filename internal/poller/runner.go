// internal/poller/runner.go
package poller

import (
	"context"
	"time"
)

// Run starts the ticker loop and emits PollResult on the provided channel.
// One goroutine per unit. No overlap: a slow cycle delays the next tick.
// Returns the ChannelError after emitting a fatal result; nil on ctx done.
func (p *Poller) Run(ctx context.Context, out chan<- PollResult) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			res := p.PollOnce()

			select {
			case out <- res:
			case <-ctx.Done():
				return nil
			}

			if res.Fatal() {
				return res.Err
			}
		}
	}
}
