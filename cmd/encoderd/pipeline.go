// cmd/encoderd/pipeline.go
package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/encoder-monitor/internal/poller"
	"github.com/tamzrod/encoder-monitor/internal/status"
	"github.com/tamzrod/encoder-monitor/internal/writer"
)

type publisher interface {
	Publish(res poller.PollResult) error
}

// pipeline is the consumer side of one unit. It owns the status tracker
// and is the only goroutine that touches it.
type pipeline struct {
	unitID string
	log    *zap.Logger

	data    writer.Writer
	status  writer.StatusWriter // nil: status block disabled
	tracker *status.Tracker

	emit         publisher // nil: mqtt disabled
	publishEvery time.Duration
	lastPublish  time.Time
}

// run consumes results until in is closed or ctx is done.
func (p *pipeline) run(ctx context.Context, in <-chan poller.PollResult) {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()

	// Full block write on start (identity re-assert).
	p.writeStatus(p.tracker.Snapshot(), "start")

	for {
		select {
		case <-ctx.Done():
			return

		case res, ok := <-in:
			if !ok {
				return
			}
			p.handle(res)

		case <-secTicker.C:
			if snap, changed := p.tracker.Tick(); changed {
				p.writeStatus(snap, "seconds tick")
			}
		}
	}
}

func (p *pipeline) handle(res poller.PollResult) {
	if err := p.data.Write(res); err != nil {
		p.log.Warn("[pipeline] writer error", zap.String("unit", p.unitID), zap.Error(err))
	}

	snap, changed := p.tracker.Observe(res.Measurement, res.Err, len(res.History) > 0)
	if changed {
		p.writeStatus(snap, "observe")
	}

	if p.emit != nil && (res.Fatal() || res.At.Sub(p.lastPublish) >= p.publishEvery) {
		p.lastPublish = res.At
		if err := p.emit.Publish(res); err != nil {
			p.log.Debug("[pipeline] publish failed", zap.String("unit", p.unitID), zap.Error(err))
		}
	}
}

func (p *pipeline) writeStatus(s status.Snapshot, why string) {
	if p.status == nil {
		return
	}
	if err := p.status.WriteStatus(s); err != nil {
		p.log.Warn("[pipeline] status write failed",
			zap.String("unit", p.unitID),
			zap.String("on", why),
			zap.Error(err))
	}
}
