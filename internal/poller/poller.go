// internal/poller/poller.go
package poller

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/tamzrod/encoder-monitor/internal/frame"
	"github.com/tamzrod/encoder-monitor/internal/history"
	"github.com/tamzrod/encoder-monitor/internal/measurement"
)

// Config is the minimal runtime config the poller needs.
type Config struct {
	UnitID          string
	Interval        time.Duration
	SampleBits      uint
	HistoryCapacity int
}

// Poller drives request/response cycles against one encoder.
// It owns the history buffer; consumers only see snapshots.
type Poller struct {
	cfg  Config
	ch   Channel
	dec  measurement.Decoder
	hist *history.Buffer
	log  *zap.Logger

	mu    sync.Mutex // at most one cycle in flight
	state atomic.Int32
	seq   uint64
}

// New creates a poller with immutable config.
func New(cfg Config, ch Channel, log *zap.Logger) (*Poller, error) {
	if cfg.UnitID == "" {
		return nil, errors.New("poller: unit id required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("poller: interval must be > 0")
	}
	if ch == nil {
		return nil, errors.New("poller: channel required")
	}

	dec, err := measurement.NewDecoder(cfg.SampleBits)
	if err != nil {
		return nil, err
	}
	hist, err := history.New(cfg.HistoryCapacity)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Poller{
		cfg:  cfg,
		ch:   ch,
		dec:  dec,
		hist: hist,
		log:  log.With(zap.String("unit", cfg.UnitID)),
	}, nil
}

// State reports whether a request is outstanding.
func (p *Poller) State() State { return State(p.state.Load()) }

// Decoder returns the decoder configured for this unit.
func (p *Poller) Decoder() measurement.Decoder { return p.dec }

// PollOnce performs exactly one poll cycle.
// All-or-nothing: a failed cycle carries no measurement, and the history
// still advances by duplicating its newest value.
func (p *Poller) PollOnce() PollResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.seq++
	res := PollResult{
		UnitID:     p.cfg.UnitID,
		At:         time.Now(),
		Seq:        p.seq,
		SampleBits: p.dec.Bits,
	}

	m, line, err := p.exchange()
	res.Line = line

	if err != nil {
		res.Err = err

		if res.Fatal() {
			p.log.Error("[poller] channel failed", zap.Error(err), zap.Uint64("seq", res.Seq))
		} else {
			p.log.Warn("[poller] error reading sample", zap.Error(err), zap.String("line", line), zap.Uint64("seq", res.Seq))
			if derr := p.hist.Duplicate(); derr != nil {
				p.log.Debug("[poller] history not advanced", zap.Error(derr))
			}
		}

		res.History = p.hist.Snapshot()
		return res
	}

	p.hist.Push(m.Position)

	if !m.CRCOK {
		p.log.Warn("[poller] crc mismatch", zap.String("line", line), zap.Uint32("position", m.Position))
	} else if ce := p.log.Check(zap.DebugLevel, "[poller] sample"); ce != nil {
		ce.Write(
			zap.Uint64("seq", res.Seq),
			zap.Uint32("position", m.Position),
			zap.Int32("turns", m.Turns),
			zap.Stringer("angle", p.dec.Angle(m.Position)),
			zap.Bool("error", m.Error),
			zap.Bool("warning", m.Warning),
		)
	}

	res.Measurement = &m
	res.History = p.hist.Snapshot()
	return res
}

// exchange runs Idle -> AwaitingResponse -> Idle for one request.
func (p *Poller) exchange() (measurement.Measurement, string, error) {
	p.state.Store(int32(AwaitingResponse))
	defer p.state.Store(int32(Idle))

	if err := p.ch.ResetInput(); err != nil {
		return measurement.Measurement{}, "", channelErr("reset", err)
	}
	if err := p.ch.WriteByte(frame.Request); err != nil {
		return measurement.Measurement{}, "", channelErr("write", err)
	}

	line, err := p.ch.ReadLine()
	if err != nil {
		return measurement.Measurement{}, line, channelErr("read", err)
	}

	s, err := frame.Parse(line)
	if err != nil {
		return measurement.Measurement{}, line, err
	}

	return p.dec.Decode(s), line, nil
}

// channelErr leaves timeouts and already-typed errors alone and treats
// everything else from the link as fatal.
func channelErr(op string, err error) error {
	if errors.Is(err, ErrTimeout) {
		return err
	}
	var ce *ChannelError
	if errors.As(err, &ce) {
		return err
	}
	return &ChannelError{Op: op, Err: err}
}
