package emitter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	cfg "github.com/tamzrod/encoder-monitor/internal/config"
	"github.com/tamzrod/encoder-monitor/internal/poller"
)

const (
	connectTimeout = 5 * time.Second
	publishTimeout = 2 * time.Second
)

// ErrNotConnected is returned by Publish while the broker link is down.
var ErrNotConnected = errors.New("mqtt not connected")

// MQTTEmitter publishes unit readouts to an MQTT broker.
type MQTTEmitter struct {
	cfg    cfg.MQTTConfig
	log    *zap.Logger
	client mqtt.Client

	mu        sync.RWMutex
	published map[string]uint64 // count per topic
	errors    uint64
	connected bool
}

// Stats contains emitter statistics.
type Stats struct {
	Connected bool
	Published map[string]uint64
	Errors    uint64
}

func NewMQTTEmitter(c cfg.MQTTConfig, log *zap.Logger) *MQTTEmitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &MQTTEmitter{
		cfg:       c,
		log:       log,
		published: make(map[string]uint64),
	}
}

// Connect dials the broker. The client reconnects on its own afterwards.
func (e *MQTTEmitter) Connect(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL(e.cfg.Broker))
	opts.SetClientID(e.cfg.ClientID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	opts.OnConnect = func(mqtt.Client) {
		e.setConnected(true)
		e.log.Info("[emitter] mqtt connection established",
			zap.String("broker", e.cfg.Broker),
			zap.String("clientID", e.cfg.ClientID))
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		e.setConnected(false)
		e.log.Warn("[emitter] mqtt connection lost, will auto-reconnect",
			zap.Error(err),
			zap.String("broker", e.cfg.Broker))
	}

	e.client = mqtt.NewClient(opts)

	e.log.Info("[emitter] connecting to mqtt broker", zap.String("broker", e.cfg.Broker))

	token := e.client.Connect()
	select {
	case <-token.Done():
	case <-time.After(connectTimeout):
		return fmt.Errorf("mqtt connection timeout")
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connection failed: %w", err)
	}

	e.setConnected(true)
	return nil
}

// Publish sends one cycle's payload to <prefix>/<unit>/readout.
func (e *MQTTEmitter) Publish(res poller.PollResult) error {
	if e.client == nil || !e.isConnected() {
		e.countError()
		return ErrNotConnected
	}

	topic := Topic(e.cfg.TopicPrefix, res.UnitID)

	payload, err := json.Marshal(BuildPayload(res))
	if err != nil {
		e.countError()
		return fmt.Errorf("failed to marshal readout: %w", err)
	}

	token := e.client.Publish(topic, e.cfg.QoS, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		e.countError()
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		e.countError()
		return fmt.Errorf("publish failed: %w", err)
	}

	e.mu.Lock()
	e.published[topic]++
	e.mu.Unlock()

	e.log.Debug("[emitter] readout published",
		zap.String("topic", topic),
		zap.Int("size", len(payload)))

	return nil
}

// Close disconnects with a 250ms grace period.
func (e *MQTTEmitter) Close() error {
	if e.client != nil && e.client.IsConnected() {
		e.client.Disconnect(250)
		e.log.Info("[emitter] mqtt disconnected")
	}
	e.setConnected(false)
	return nil
}

func (e *MQTTEmitter) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	published := make(map[string]uint64, len(e.published))
	for k, v := range e.published {
		published[k] = v
	}

	return Stats{
		Connected: e.connected,
		Published: published,
		Errors:    e.errors,
	}
}

func (e *MQTTEmitter) isConnected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *MQTTEmitter) setConnected(v bool) {
	e.mu.Lock()
	e.connected = v
	e.mu.Unlock()
}

func (e *MQTTEmitter) countError() {
	e.mu.Lock()
	e.errors++
	e.mu.Unlock()
}

// Topic joins prefix and unit id, dropping a trailing slash on the prefix.
func Topic(prefix, unitID string) string {
	return strings.TrimRight(prefix, "/") + "/" + unitID + "/readout"
}

// brokerURL accepts a bare host:port and defaults it to tcp.
func brokerURL(broker string) string {
	if strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}
