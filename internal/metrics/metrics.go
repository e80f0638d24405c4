// Package metrics exports sensor state as Prometheus metrics.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/pkg/phase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry and implements sensor.Listener
type Collector struct {
	registry    *prometheus.Registry
	elevation   *prometheus.GaugeVec
	phase       *prometheus.GaugeVec
	transitions *prometheus.CounterVec
	updates     *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

// New creates a Collector with all metrics registered
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		elevation: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "astralphase_solar_elevation_degrees",
				Help: "Solar elevation at the last update",
			},
			[]string{"sensor"},
		),
		phase: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "astralphase_phase",
				Help: "1 for the sensor's current phase, 0 for every other phase",
			},
			[]string{"sensor", "phase"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astralphase_phase_transitions_total",
				Help: "Total number of phase changes",
			},
			[]string{"sensor", "from", "to"},
		),
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "astralphase_updates_total",
				Help: "Total number of sensor updates",
			},
			[]string{"sensor"},
		),
		requests: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "astralphase_http_request_duration_seconds",
				Help:    "Duration of REST API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "code"},
		),
	}

	c.registry.MustRegister(c.elevation, c.phase, c.transitions, c.updates, c.requests)
	return c
}

// OnUpdate implements sensor.Listener
func (c *Collector) OnUpdate(_ context.Context, prev, cur sensor.State) {
	c.updates.WithLabelValues(cur.Name).Inc()
	if cur.Attributes != nil {
		c.elevation.WithLabelValues(cur.Name).Set(cur.Attributes.Elevation)
	}

	for _, l := range phase.Labels() {
		v := 0.0
		if l == cur.Label {
			v = 1
		}
		c.phase.WithLabelValues(cur.Name, l.String()).Set(v)
	}

	if sensor.Transitioned(prev, cur) {
		c.transitions.WithLabelValues(cur.Name, prev.Label.String(), cur.Label.String()).Inc()
	}
}

// ObserveRequest records the outcome of one REST request
func (c *Collector) ObserveRequest(method string, code int, d time.Duration) {
	c.requests.WithLabelValues(method, strconv.Itoa(code)).Observe(d.Seconds())
}

// Registry exposes the underlying registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
