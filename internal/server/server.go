// Package server exposes the report engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fjacquet/payout-report/internal/codes"
	"fjacquet/payout-report/internal/logging"
	"fjacquet/payout-report/internal/metrics"
	"fjacquet/payout-report/internal/report"
	"fjacquet/payout-report/internal/runner"
	"fjacquet/payout-report/internal/ytd"

	"github.com/gorilla/mux"
)

// Route paths.
const (
	PathReport          = "/api/transactions/periodicpayout/generate-report"
	PathDateRangeReport = "/api/transactions/periodicpayout/dateRange/generate-report"
	PathMessageImages   = "/api/transactions/periodicpayout/download-json"
	PathCode            = "/api/codes/{domain}/{code}"
	PathHealth          = "/health"
	PathMetrics         = "/metrics"
)

// ReportRunner is the engine surface the handlers call.
type ReportRunner interface {
	Run(ctx context.Context, w ytd.Window) (*runner.Result, error)
	MessageImages(ctx context.Context, w ytd.Window) (map[string]json.RawMessage, error)
}

// WindowFunc resolves the default report window at a point in time.
type WindowFunc func(now time.Time) (ytd.Window, error)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Config holds listener settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns the listener defaults.
func DefaultConfig() Config {
	return Config{
		Addr:         ":8080",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}
}

// Deps are the collaborators of a Server. Window resolves the default report
// window on every request so that an open-ended window follows the clock.
type Deps struct {
	Runner    ReportRunner
	Generator *report.Generator
	Registry  *codes.Registry
	Metrics   *metrics.Metrics
	Logger    logging.Logger
	Window    WindowFunc
	Health    HealthChecker
}

// Server is the HTTP front of the report engine.
type Server struct {
	router    *mux.Router
	server    *http.Server
	runner    ReportRunner
	generator *report.Generator
	registry  *codes.Registry
	metrics   *metrics.Metrics
	logger    logging.Logger
	window    WindowFunc
	health    HealthChecker
	now       func() time.Time
}

// New creates a Server and registers its routes.
func New(cfg Config, d Deps) (*Server, error) {
	if d.Runner == nil {
		return nil, errors.New("server: runner is required")
	}
	if d.Registry == nil {
		return nil, errors.New("server: code registry is required")
	}
	if d.Window == nil {
		return nil, errors.New("server: window resolver is required")
	}
	logger := d.Logger
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	generator := d.Generator
	if generator == nil {
		generator = report.NewGenerator(logger, ',')
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultConfig().Addr
	}

	s := &Server{
		router:    mux.NewRouter(),
		runner:    d.Runner,
		generator: generator,
		registry:  d.Registry,
		metrics:   d.Metrics,
		logger:    logger.WithField(logging.FieldComponent, "server"),
		window:    d.Window,
		health:    d.Health,
		now:       time.Now,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc(PathReport, s.handleReport).Methods(http.MethodGet)
	s.router.HandleFunc(PathDateRangeReport, s.handleDateRangeReport).Methods(http.MethodGet)
	s.router.HandleFunc(PathMessageImages, s.handleMessageImages).Methods(http.MethodGet)
	s.router.HandleFunc(PathCode, s.handleCode).Methods(http.MethodGet)
	s.router.HandleFunc(PathHealth, s.handleHealth).Methods(http.MethodGet)
	s.router.Handle(PathMetrics, s.metrics.Handler()).Methods(http.MethodGet)

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.server.Addr }

// Start listens until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", logging.F("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
