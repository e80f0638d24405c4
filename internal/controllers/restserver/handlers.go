package restserver

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/internal/storage/history"
	"github.com/chrissnell/astralphase/pkg/phase"
	"github.com/chrissnell/astralphase/pkg/responseformat"
	"github.com/chrissnell/astralphase/pkg/solar"
	"github.com/gorilla/mux"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// SensorReading is a classification of one sensor at an arbitrary instant
type SensorReading struct {
	Sensor string `json:"sensor"`
	Icon   string `json:"icon"`
	phase.Reading
}

// Classification is the result of a pure classify request
type Classification struct {
	Phase phase.Label `json:"phase"`
	Icon  string      `json:"icon"`
}

// PhaseInfo describes one label for the /phases listing
type PhaseInfo struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

var noCache = map[string]string{"Cache-Control": "no-cache"}

// GetSensors returns the state of every sensor in configuration order
func (h *Handlers) GetSensors(w http.ResponseWriter, req *http.Request) {
	states := make([]sensor.State, 0, len(h.controller.order))
	for _, name := range h.controller.order {
		states = append(states, h.controller.sensors[name].State())
	}
	h.respond(w, req, states)
}

// GetSensor returns the state of one sensor
func (h *Handlers) GetSensor(w http.ResponseWriter, req *http.Request) {
	s, ok := h.lookupSensor(w, req)
	if !ok {
		return
	}
	h.respond(w, req, s.State())
}

// GetSensorAt classifies an arbitrary instant with a sensor's location and
// settings. Without a time parameter the current instant is used.
func (h *Handlers) GetSensorAt(w http.ResponseWriter, req *http.Request) {
	s, ok := h.lookupSensor(w, req)
	if !ok {
		return
	}

	at := time.Now()
	if raw := req.URL.Query().Get("time"); raw != "" {
		var err error
		at, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			h.formatter.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid time %q: expected RFC3339", raw))
			return
		}
	}

	r := s.At(at)
	h.respond(w, req, SensorReading{
		Sensor:  s.Name(),
		Icon:    r.Label.Icon(),
		Reading: r,
	})
}

// GetSensorHistory returns a sensor's recent phase transitions, newest first
func (h *Handlers) GetSensorHistory(w http.ResponseWriter, req *http.Request) {
	s, ok := h.lookupSensor(w, req)
	if !ok {
		return
	}
	if h.controller.history == nil {
		h.formatter.WriteError(w, http.StatusNotFound, "history storage is not enabled")
		return
	}

	limit := history.DefaultLimit
	if raw := req.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.formatter.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", raw))
			return
		}
		limit = n
	}

	transitions, err := h.controller.history.Recent(req.Context(), s.Name(), history.ClampLimit(limit))
	if err != nil {
		h.controller.logger.Errorf("error fetching history for %s: %v", s.Name(), err)
		h.formatter.WriteError(w, http.StatusInternalServerError, "unable to read history")
		return
	}
	h.respond(w, req, transitions)
}

// Classify runs the classifier on caller-supplied inputs
func (h *Handlers) Classify(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()

	elevation, err := requiredFloat(q.Get("elevation"), "elevation")
	if err != nil {
		h.formatter.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	rawRising := q.Get("rising")
	if rawRising == "" {
		h.formatter.WriteError(w, http.StatusBadRequest, "missing rising")
		return
	}
	rising, err := strconv.ParseBool(rawRising)
	if err != nil {
		h.formatter.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid rising %q", rawRising))
		return
	}

	depression, err := solar.ParseDepression(q.Get("depression"))
	if err != nil {
		h.formatter.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	cfg := phase.DefaultConfig()
	if raw := q.Get("transition"); raw != "" {
		if cfg.UseTransition, err = strconv.ParseBool(raw); err != nil {
			h.formatter.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid transition %q", raw))
			return
		}
	}
	if raw := q.Get("transition_elevation"); raw != "" {
		if cfg.TransitionElevation, err = requiredFloat(raw, "transition_elevation"); err != nil {
			h.formatter.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	label := phase.Classify(elevation, rising, depression, cfg)
	h.respond(w, req, Classification{Phase: label, Icon: label.Icon()})
}

// GetPhases lists every label with its icon
func (h *Handlers) GetPhases(w http.ResponseWriter, req *http.Request) {
	labels := phase.Labels()
	out := make([]PhaseInfo, 0, len(labels))
	for _, l := range labels {
		out = append(out, PhaseInfo{Name: l.String(), Icon: l.Icon()})
	}
	h.respond(w, req, out)
}

func (h *Handlers) lookupSensor(w http.ResponseWriter, req *http.Request) (*sensor.Sensor, bool) {
	name := mux.Vars(req)["name"]
	s, ok := h.controller.sensor(name)
	if !ok {
		h.formatter.WriteError(w, http.StatusNotFound, fmt.Sprintf("unknown sensor %q", name))
	}
	return s, ok
}

func (h *Handlers) respond(w http.ResponseWriter, req *http.Request, data any) {
	if err := h.formatter.WriteResponse(w, req, data, noCache); err != nil {
		h.controller.logger.Errorf("error encoding response: %v", err)
	}
}

func requiredFloat(raw, name string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing %s", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid %s %q: expected a finite number", name, raw)
	}
	return v, nil
}
