package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/astralphase/internal/log"
	"github.com/chrissnell/astralphase/internal/metrics"
	"github.com/chrissnell/astralphase/internal/sensor"
	"github.com/chrissnell/astralphase/internal/storage/history"
	"github.com/chrissnell/astralphase/pkg/config"
	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.RESTServerData
	Server     http.Server
	sensors    map[string]*sensor.Sensor
	order      []string
	history    history.Store
	metrics    *metrics.Collector
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// NewController creates a new REST server controller. store and collector
// may be nil when history or metrics are disabled.
func NewController(ctx context.Context, wg *sync.WaitGroup, rc config.RESTServerData, sensors []*sensor.Sensor, store history.Store, collector *metrics.Collector, logger *zap.SugaredLogger) (*Controller, error) {
	if len(sensors) == 0 {
		return nil, fmt.Errorf("no sensors configured - at least one sensor is required for the REST server")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		sensors:    make(map[string]*sensor.Sensor, len(sensors)),
		history:    store,
		metrics:    collector,
		logger:     logger,
	}

	for _, s := range sensors {
		if _, dup := ctrl.sensors[s.Name()]; dup {
			return nil, fmt.Errorf("duplicate sensor name %q", s.Name())
		}
		ctrl.sensors[s.Name()] = s
		ctrl.order = append(ctrl.order, s.Name())
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if rc.ListenAddr == "" {
		logger.Info("rest.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		rc.ListenAddr = "0.0.0.0"
	}

	// Set default HTTP port if not specified
	if rc.Port == 0 {
		logger.Info("rest.port not provided; defaulting to 8080")
		rc.Port = 8080
	}
	ctrl.restConfig = rc

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", rc.ListenAddr, rc.Port)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server
func (c *Controller) StartController() error {
	c.logger.Infof("Starting REST server controller on %s...", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		if c.restConfig.Cert != "" && c.restConfig.Key != "" {
			if err := c.Server.ListenAndServeTLS(c.restConfig.Cert, c.restConfig.Key); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		} else {
			if err := c.Server.ListenAndServe(); err != http.ErrServerClosed {
				c.logger.Errorf("REST server error: %v", err)
			}
		}
	}()

	go func() {
		<-c.ctx.Done()
		c.logger.Info("Shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()

	router.Use(log.HTTPMiddleware(c.logger))
	if c.metrics != nil {
		router.Use(c.metricsMiddleware)
	}

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/sensors", c.handlers.GetSensors).Methods(http.MethodGet)
	api.HandleFunc("/sensors/{name}", c.handlers.GetSensor).Methods(http.MethodGet)
	api.HandleFunc("/sensors/{name}/at", c.handlers.GetSensorAt).Methods(http.MethodGet)
	api.HandleFunc("/sensors/{name}/history", c.handlers.GetSensorHistory).Methods(http.MethodGet)
	api.HandleFunc("/classify", c.handlers.Classify).Methods(http.MethodGet)
	api.HandleFunc("/phases", c.handlers.GetPhases).Methods(http.MethodGet)

	// The exposition endpoint is only mounted when metrics are enabled.
	if c.metrics != nil && c.restConfig.Metrics {
		router.Handle("/metrics", c.metrics.Handler()).Methods(http.MethodGet)
	}

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		c.handlers.formatter.WriteError(w, http.StatusNotFound, "not found")
	})

	return router
}

func (c *Controller) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		c.metrics.ObserveRequest(r.Method, m.Code, m.Duration)
	})
}

// sensor looks up a configured sensor by name
func (c *Controller) sensor(name string) (*sensor.Sensor, bool) {
	s, ok := c.sensors[name]
	return s, ok
}
