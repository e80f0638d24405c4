// Package sensor runs an astral phase sensor: it periodically classifies the
// solar day phase for one location and publishes the result to listeners.
package sensor

import (
	"context"
	"sync"
	"time"

	"github.com/chrissnell/astralphase/pkg/phase"
	"go.uber.org/zap"
)

// Attributes are auxiliary values published alongside the phase
type Attributes struct {
	Elevation float64 `json:"elevation"`
	Rising    bool    `json:"rising"`
}

// State is a snapshot of a sensor
type State struct {
	Name        string      `json:"name"`
	Label       phase.Label `json:"state"`
	Icon        string      `json:"icon"`
	Attributes  *Attributes `json:"attributes,omitempty"`
	LastUpdated time.Time   `json:"last_updated,omitempty"`
}

// Listener is notified after every update
type Listener interface {
	OnUpdate(ctx context.Context, prev, cur State)
}

// ListenerFunc adapts a function to the Listener interface
type ListenerFunc func(ctx context.Context, prev, cur State)

func (f ListenerFunc) OnUpdate(ctx context.Context, prev, cur State) {
	f(ctx, prev, cur)
}

// Changed reports whether an update moved the sensor into a different phase
func Changed(prev, cur State) bool {
	return prev.Label != cur.Label
}

// Transitioned reports whether an update is a real phase change. The first
// classification after startup leaves Unknown and does not count.
func Transitioned(prev, cur State) bool {
	return prev.Label != phase.Unknown && Changed(prev, cur)
}

// Sensor classifies the phase of the solar day for one location
type Sensor struct {
	name      string
	ephemeris phase.Ephemeris
	config    phase.Config
	clock     func() time.Time
	logger    *zap.SugaredLogger

	mu        sync.RWMutex
	state     State
	listeners []Listener
}

// Option configures a Sensor
type Option func(*Sensor)

// WithClock replaces time.Now as the sensor's time source
func WithClock(clock func() time.Time) Option {
	return func(s *Sensor) { s.clock = clock }
}

// WithListeners registers listeners at construction time
func WithListeners(l ...Listener) Option {
	return func(s *Sensor) { s.listeners = append(s.listeners, l...) }
}

// New creates a sensor in the Unknown state
func New(name string, e phase.Ephemeris, cfg phase.Config, logger *zap.SugaredLogger, opts ...Option) *Sensor {
	s := &Sensor{
		name:      name,
		ephemeris: e,
		config:    cfg,
		clock:     time.Now,
		logger:    logger,
		state: State{
			Name:  name,
			Label: phase.Unknown,
			Icon:  phase.Unknown.Icon(),
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if cfg.UseTransition {
		logger.Debugf("Using transition phase with %f", cfg.TransitionElevation)
	} else {
		logger.Debug("Transition phase disabled.")
	}

	return s
}

func (s *Sensor) Name() string { return s.name }

func (s *Sensor) Config() phase.Config { return s.config }

func (s *Sensor) Ephemeris() phase.Ephemeris { return s.ephemeris }

// AddListener registers a listener for subsequent updates
func (s *Sensor) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// State returns the most recent snapshot
func (s *Sensor) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// At classifies an arbitrary instant without touching the sensor's state
func (s *Sensor) At(t time.Time) phase.Reading {
	return phase.At(s.ephemeris, t, s.config)
}

// Update classifies the current instant, stores the result and notifies
// listeners. It returns the new state.
func (s *Sensor) Update(ctx context.Context) State {
	r := s.At(s.clock())
	s.logger.Debugf("Current elevation: %f", r.Elevation)

	cur := State{
		Name:  s.name,
		Label: r.Label,
		Icon:  r.Label.Icon(),
		Attributes: &Attributes{
			Elevation: r.Elevation,
			Rising:    r.Rising,
		},
		LastUpdated: r.Time,
	}

	s.mu.Lock()
	prev := s.state
	s.state = cur
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.Debugf("Updated astral phase: %s, %f", cur.Label, r.Elevation)
	if Changed(prev, cur) {
		s.logger.Infow("astral phase changed", "from", prev.Label.String(), "to", cur.Label.String(), "elevation", r.Elevation)
	}

	for _, l := range listeners {
		l.OnUpdate(ctx, prev, cur)
	}
	return cur
}

// Run updates immediately and then once per interval until ctx is cancelled
func (s *Sensor) Run(ctx context.Context, wg *sync.WaitGroup, interval time.Duration) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		s.Update(ctx)
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Stopping astral phase sensor")
				return
			case <-ticker.C:
				s.Update(ctx)
			}
		}
	}()
}
