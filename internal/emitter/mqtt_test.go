package emitter

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	cfg "github.com/tamzrod/encoder-monitor/internal/config"
	"github.com/tamzrod/encoder-monitor/internal/measurement"
	"github.com/tamzrod/encoder-monitor/internal/poller"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }

func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (t fakeToken) Error() error { return t.err }

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeClient implements only what the emitter calls.
type fakeClient struct {
	mqtt.Client
	msgs []published
	err  error
}

func (c *fakeClient) IsConnected() bool { return true }
func (c *fakeClient) Disconnect(uint) {}

func (c *fakeClient) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	c.msgs = append(c.msgs, published{topic, qos, payload.([]byte)})
	return fakeToken{err: c.err}
}

func connectedEmitter(c *fakeClient) *MQTTEmitter {
	e := NewMQTTEmitter(cfg.MQTTConfig{TopicPrefix: "plant/encoders/", QoS: 1}, nil)
	e.client = c
	e.connected = true
	return e
}

func TestTopic(t *testing.T) {
	require.Equal(t, "encoders/enc-1/readout", Topic("encoders", "enc-1"))
	require.Equal(t, "a/b/enc-2/readout", Topic("a/b/", "enc-2"))
}

func TestBrokerURL(t *testing.T) {
	require.Equal(t, "tcp://127.0.0.1:1883", brokerURL("127.0.0.1:1883"))
	require.Equal(t, "ssl://broker:8883", brokerURL("ssl://broker:8883"))
}

func TestPublishReadout(t *testing.T) {
	c := &fakeClient{}
	e := connectedEmitter(c)

	res := poller.PollResult{
		UnitID:      "enc-1",
		Seq:         7,
		At:          time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		SampleBits:  18,
		Line:        "ok 00 03 08 f6 43 eb",
		Measurement: &measurement.Measurement{Position: 0x23D9, Turns: 3, CRCOK: true},
		History:     []uint32{0x23D9},
	}

	require.NoError(t, e.Publish(res))
	require.Len(t, c.msgs, 1)
	require.Equal(t, "plant/encoders/enc-1/readout", c.msgs[0].topic)
	require.Equal(t, byte(1), c.msgs[0].qos)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(c.msgs[0].payload, &got))
	require.Equal(t, "enc-1", got["unit"])
	require.Equal(t, float64(7), got["seq"])
	require.Equal(t, []interface{}{float64(0x23D9)}, got["history"])

	readout := got["readout"].(map[string]interface{})
	require.Equal(t, "OK", readout["status"])
	require.Equal(t, "OK", readout["crc"])
	require.Equal(t, float64(9177), readout["position"])

	st := e.Stats()
	require.True(t, st.Connected)
	require.Equal(t, uint64(1), st.Published["plant/encoders/enc-1/readout"])
	require.Zero(t, st.Errors)
}

func TestPublishFailedCycle(t *testing.T) {
	c := &fakeClient{}
	e := connectedEmitter(c)

	require.NoError(t, e.Publish(poller.PollResult{UnitID: "enc-1", Err: poller.ErrTimeout}))

	var p Payload
	require.NoError(t, json.Unmarshal(c.msgs[0].payload, &p))
	require.Equal(t, poller.StatusNoData, p.Readout.Status)
	require.NotEmpty(t, p.Error)
	require.NotNil(t, p.History)
}

func TestPublishErrorsCounted(t *testing.T) {
	e := NewMQTTEmitter(cfg.MQTTConfig{TopicPrefix: "encoders"}, nil)
	require.ErrorIs(t, e.Publish(poller.PollResult{UnitID: "enc-1"}), ErrNotConnected)

	c := &fakeClient{err: errors.New("broker said no")}
	e = connectedEmitter(c)
	require.Error(t, e.Publish(poller.PollResult{UnitID: "enc-1", Err: poller.ErrTimeout}))
	require.Equal(t, uint64(1), e.Stats().Errors)

	require.NoError(t, e.Close())
	require.False(t, e.Stats().Connected)
}
