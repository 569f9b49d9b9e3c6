// cmd/encoderd/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tamzrod/encoder-monitor/internal/config"
	"github.com/tamzrod/encoder-monitor/internal/emitter"
	"github.com/tamzrod/encoder-monitor/internal/logger"
	"github.com/tamzrod/encoder-monitor/internal/poller"
	"github.com/tamzrod/encoder-monitor/internal/poller/serial"
	"github.com/tamzrod/encoder-monitor/internal/status"
	"github.com/tamzrod/encoder-monitor/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: encoderd <config.yaml>")
		os.Exit(2)
	}

	// --------------------
	// Load + normalize + validate config
	// --------------------

	cfg, err := config.Load(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	config.Normalize(cfg)

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("[main] unit stopped", zap.Error(err))
	}
	log.Info("[main] shutdown complete")
}

// run starts every unit and blocks until ctx is cancelled or a unit's
// channel fails. A channel failure stops all units.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var emit *emitter.MQTTEmitter
	if cfg.MQTT.Enabled() {
		mc := cfg.MQTT
		if mc.ClientID == "" {
			mc.ClientID = "encoderd"
		}
		emit = emitter.NewMQTTEmitter(mc, log)
		if err := emit.Connect(ctx); err != nil {
			// auto-reconnect keeps trying; readouts are dropped meanwhile
			log.Warn("[main] mqtt connect failed", zap.Error(err))
		}
		defer emit.Close()
	}

	g, gctx := errgroup.WithContext(ctx)
	open := serial.Opener(log)

	// --------------------
	// Build per-unit pipelines
	// --------------------

	for _, unit := range cfg.Monitor.Units {
		ulog := log.With(zap.String("unit", unit.ID))

		// ---- poller ----
		p, closePoller, err := poller.Build(unit, open, ulog)
		if err != nil {
			return fmt.Errorf("poller build failed (unit=%s): %w", unit.ID, err)
		}
		defer closePoller()

		// ---- writer plan + clients (DATA + STATUS) ----
		plan, err := writer.BuildPlan(unit, cfg.Monitor.StatusMemory)
		if err != nil {
			return fmt.Errorf("writer plan failed (unit=%s): %w", unit.ID, err)
		}

		clients, closeWriters, err := writer.BuildEndpointClients(unit, cfg.Monitor.StatusMemory)
		if err != nil {
			return fmt.Errorf("writer clients failed (unit=%s): %w", unit.ID, err)
		}
		defer closeWriters()

		pl := &pipeline{
			unitID:       unit.ID,
			log:          ulog,
			data:         writer.New(plan, clients),
			tracker:      status.NewTracker(unit.SampleBits),
			publishEvery: time.Duration(cfg.MQTT.PublishIntervalMs) * time.Millisecond,
		}
		if sw, ok := writer.NewDeviceStatusWriter(plan, clients); ok {
			pl.status = sw
		}
		if emit != nil {
			pl.emit = emit
		}

		out := make(chan poller.PollResult, 1)

		g.Go(func() error {
			defer close(out)
			return p.Run(gctx, out)
		})
		g.Go(func() error {
			pl.run(gctx, out)
			return nil
		})

		ulog.Info("[main] unit started",
			zap.String("device", unit.Serial.Device),
			zap.Uint("sampleBits", unit.SampleBits),
			zap.Int("targets", len(unit.Targets)),
			zap.Bool("status", plan.Status != nil))
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
