// internal/writer/builder.go
package writer

import (
	"errors"
	"fmt"
	"time"

	cfg "github.com/tamzrod/encoder-monitor/internal/config"
	"github.com/tamzrod/encoder-monitor/internal/writer/ingest"
	wmodbus "github.com/tamzrod/encoder-monitor/internal/writer/modbus"
)

// BuildPlan converts one unit config into a Writer Plan.
// Assumes config has already passed Normalize and Validate.
func BuildPlan(u cfg.UnitConfig, statusMem cfg.StatusMemoryConfig) (Plan, error) {
	if u.ID == "" {
		return Plan{}, errors.New("writer: unit.id required")
	}

	plan := Plan{
		UnitID:     u.ID,
		SampleBits: u.SampleBits,
	}

	for _, t := range u.Targets {
		ep := TargetEndpoint{
			TargetID: t.ID,
			Endpoint: t.Endpoint,
		}

		for _, m := range t.Memories {
			ep.Memories = append(ep.Memories, MemoryDest{
				MemoryID: m.MemoryID,
				Address:  m.Address,
			})
		}

		plan.Targets = append(plan.Targets, ep)
	}

	if u.Status != nil {
		plan.Status = &StatusPlan{
			Endpoint:   statusMem.Endpoint,
			UnitID:     u.Status.UnitID,
			BaseSlot:   u.Status.Slot,
			DeviceName: u.Status.DeviceName,
		}
	}

	return plan, nil
}

type closableClient interface {
	endpointClient
	Close() error
}

// BuildEndpointClients creates one client per unique endpoint,
// including the status memory endpoint when the unit opts in.
func BuildEndpointClients(u cfg.UnitConfig, statusMem cfg.StatusMemoryConfig) (map[string]endpointClient, func() error, error) {
	type want struct {
		transport string
		timeout   time.Duration
	}

	unique := map[string]want{}
	for _, t := range u.Targets {
		unique[t.Endpoint] = want{t.Transport, time.Duration(t.TimeoutMs) * time.Millisecond}
	}
	if u.Status != nil {
		if _, ok := unique[statusMem.Endpoint]; !ok {
			unique[statusMem.Endpoint] = want{
				statusMem.Transport,
				time.Duration(cfg.DefaultTargetTimeout) * time.Millisecond,
			}
		}
	}

	clients := make(map[string]endpointClient)
	var closers []func() error

	closeAll := func() error {
		var last error
		for _, fn := range closers {
			if err := fn(); err != nil {
				last = err
			}
		}
		return last
	}

	for endpoint, w := range unique {
		c, err := newClient(endpoint, w.transport, w.timeout)
		if err != nil {
			_ = closeAll()
			return nil, nil, err
		}
		clients[endpoint] = c
		closers = append(closers, c.Close)
	}

	return clients, closeAll, nil
}

func newClient(endpoint, transport string, timeout time.Duration) (closableClient, error) {
	switch transport {
	case cfg.TransportModbus:
		c, err := wmodbus.NewEndpointClient(wmodbus.Config{
			Endpoint: endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case cfg.TransportIngest:
		c, err := ingest.NewEndpointClient(ingest.Config{
			Endpoint: endpoint,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("writer: unsupported transport %q", transport)
	}
}
