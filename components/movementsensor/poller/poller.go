// Package poller polls a set of sensors on a fixed interval from one background goroutine.
package poller

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/motionsensors/components/movementsensor"
	"go.viam.com/motionsensors/logging"
)

// A sensor's error is reported by Err once this many of its last errorWindow polls failed.
const (
	errorWindow    = 5
	errorThreshold = 3
)

type polledSensor struct {
	name    string
	sensor  movementsensor.Sensor
	lastErr *movementsensor.LastError
	polls   uint64
}

// Poller calls Poll on every sensor once per interval, in name order. A failing sensor is logged
// and polled again on the next tick.
type Poller struct {
	clock    clock.Clock
	interval time.Duration
	logger   logging.Logger

	mu      sync.Mutex
	sensors []*polledSensor
	byName  map[string]*polledSensor
	started bool

	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

// New returns a poller over sensors keyed by name. A nil clk means the wall clock.
func New(
	sensors map[string]movementsensor.Sensor,
	interval time.Duration,
	clk clock.Clock,
	logger logging.Logger,
) (*Poller, error) {
	if interval <= 0 {
		return nil, errors.Errorf("poll interval must be positive, got %s", interval)
	}
	if clk == nil {
		clk = clock.New()
	}
	p := &Poller{
		clock:    clk,
		interval: interval,
		logger:   logger,
		byName:   make(map[string]*polledSensor, len(sensors)),
	}
	for name, sensor := range sensors {
		ps := &polledSensor{
			name:    name,
			sensor:  sensor,
			lastErr: movementsensor.NewLastError(errorWindow, errorThreshold),
		}
		p.sensors = append(p.sensors, ps)
		p.byName[name] = ps
	}
	sort.Slice(p.sensors, func(i, j int) bool { return p.sensors[i].name < p.sensors[j].name })
	return p, nil
}

// Start begins polling until ctx is done or Close is called. It may be called once.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return errors.New("poller already started")
	}
	p.started = true

	ctx, p.cancelFunc = context.WithCancel(ctx)
	// The ticker exists before Start returns so that no tick of an advanced clock is lost.
	ticker := p.clock.Ticker(p.interval)
	p.activeBackgroundWorkers.Add(1)
	utils.PanicCapturingGo(func() {
		defer p.activeBackgroundWorkers.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.pollAll(ctx)
			}
		}
	})
	return nil
}

func (p *Poller) pollAll(ctx context.Context) {
	for _, ps := range p.sensors {
		if ctx.Err() != nil {
			return
		}
		err := ps.sensor.Poll(ctx)
		ps.lastErr.Set(err)
		if err != nil {
			p.logger.Warnw("poll failed", "sensor", ps.name, "error", err)
			continue
		}
		p.mu.Lock()
		ps.polls++
		p.mu.Unlock()
	}
}

// Polls returns how many polls of the named sensor have succeeded.
func (p *Poller) Polls(name string) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ps, ok := p.byName[name]; ok {
		return ps.polls
	}
	return 0
}

// Err returns the named sensor's most recent poll error once enough recent polls have failed, and
// then forgets it.
func (p *Poller) Err(name string) error {
	ps, ok := p.byName[name]
	if !ok {
		return errors.Errorf("no sensor named %q", name)
	}
	return ps.lastErr.Get()
}

// Readings returns the latest readings of every sensor. A sensor whose readings fail is reported
// in the error and left out of the map.
func (p *Poller) Readings(ctx context.Context) (map[string]map[string]interface{}, error) {
	all := make(map[string]map[string]interface{}, len(p.sensors))
	var errs []error
	for _, ps := range p.sensors {
		readings, err := ps.sensor.Readings(ctx, nil)
		if err != nil {
			errs = append(errs, errors.Wrapf(err, "sensor %q", ps.name))
			continue
		}
		all[ps.name] = readings
	}
	return all, multierr.Combine(errs...)
}

// Close stops polling and waits for the poll in progress to finish. It does not close the sensors.
func (p *Poller) Close() {
	p.mu.Lock()
	cancel := p.cancelFunc
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	p.activeBackgroundWorkers.Wait()
}
