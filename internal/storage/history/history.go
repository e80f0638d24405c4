// Package history keeps a log of phase transitions for each sensor.
package history

import (
	"context"
	"time"

	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/pkg/phase"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLimit and MaxLimit bound Recent queries
const (
	DefaultLimit = 50
	MaxLimit     = 1000
)

// Transition records a sensor moving from one phase to another
type Transition struct {
	ID        string      `json:"id"`
	Sensor    string      `json:"sensor"`
	At        time.Time   `json:"at"`
	From      phase.Label `json:"from"`
	To        phase.Label `json:"to"`
	Elevation float64     `json:"elevation"`
}

// Store persists transitions
type Store interface {
	Record(ctx context.Context, t Transition) error
	// Recent returns up to limit transitions for a sensor, newest first
	Recent(ctx context.Context, sensorName string, limit int) ([]Transition, error)
	Close() error
}

// ClampLimit maps a requested limit onto [1, MaxLimit], using DefaultLimit
// for anything non-positive
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Recorder is a sensor.Listener that writes every label change to a Store
type Recorder struct {
	store  Store
	logger *zap.SugaredLogger
}

func NewRecorder(store Store, logger *zap.SugaredLogger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// OnUpdate records the transition if the label changed. Leaving the initial
// Unknown state is not recorded. Write failures are logged and dropped so the
// sensor keeps running.
func (r *Recorder) OnUpdate(ctx context.Context, prev, cur sensor.State) {
	if !sensor.Transitioned(prev, cur) {
		return
	}

	t := Transition{
		ID:     uuid.New().String(),
		Sensor: cur.Name,
		At:     cur.LastUpdated,
		From:   prev.Label,
		To:     cur.Label,
	}
	if cur.Attributes != nil {
		t.Elevation = cur.Attributes.Elevation
	}

	if err := r.store.Record(ctx, t); err != nil {
		r.logger.Errorw("unable to record phase transition", "sensor", cur.Name, "error", err)
	}
}
