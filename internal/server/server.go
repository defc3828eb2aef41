package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/copyleftdev/SARSIM/internal/config"
	apperrors "github.com/copyleftdev/SARSIM/internal/errors"
	"github.com/copyleftdev/SARSIM/internal/logging"
	"github.com/copyleftdev/SARSIM/internal/metrics"
	"github.com/copyleftdev/SARSIM/internal/search"
)

// Logger defines the logging interface used by the server
// This allows us to be flexible with our logging implementation
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records simulation and session activity in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithEngineLogger sets the zap logger handed to simulation harnesses.
func WithEngineLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.engineLog = l
		}
	}
}

// Server implements the HTTP and JSON-RPC API: asynchronous Monte Carlo
// simulations plus interactive, round-by-round search sessions.
type Server struct {
	cfg       *config.Config
	logger    Logger
	metrics   *metrics.Metrics
	engineLog *zap.Logger
	specs     []search.RegionSpec

	simulations   map[string]*SimulationState
	simulationsMu sync.RWMutex // Protects the simulations map and every state in it

	sessions   map[string]*session
	sessionsMu sync.RWMutex // Protects the sessions map
}

// NewServer creates a server for the scenario in cfg (the built-in one when
// cfg carries none).
func NewServer(cfg *config.Config, logger Logger, opts ...Option) *Server {
	sc := cfg.Scenario
	if sc == nil {
		sc = config.DefaultScenario()
	}

	s := &Server{
		cfg:         cfg,
		logger:      logger,
		engineLog:   zap.NewNop(),
		specs:       sc.Specs(),
		simulations: make(map[string]*SimulationState),
		sessions:    make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/strategies", s.handleStrategies)

		r.Post("/simulations", s.handleSimulate)
		r.Get("/simulations/{id}", s.handleSimulationStatus)
		r.Delete("/simulations/{id}", s.handleSimulationCancel)

		r.Post("/sessions", s.handleSessionCreate)
		r.Get("/sessions/{id}", s.handleSessionGet)
		r.Post("/sessions/{id}/rounds", s.handleSessionRound)
		r.Delete("/sessions/{id}", s.handleSessionDelete)
	})

	// JSON-RPC 2.0 endpoint
	r.Post("/rpc", s.handleJSONRPC)
}

// handleStrategies lists the built-in strategies and the scenario regions.
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	names := make([]string, 0, len(search.Strategies()))
	for _, st := range search.Strategies() {
		names = append(names, st.String())
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategies": names,
		"regions":    s.specs,
		"plans":      search.Plans(len(s.specs)),
	})
}

// Close cancels every running simulation and drops all sessions.
func (s *Server) Close() error {
	s.simulationsMu.Lock()
	for _, sim := range s.simulations {
		if sim.cancel != nil {
			sim.cancel()
		}
	}
	s.simulationsMu.Unlock()

	s.sessionsMu.Lock()
	n := len(s.sessions)
	s.sessions = make(map[string]*session)
	s.sessionsMu.Unlock()

	if s.metrics != nil {
		for i := 0; i < n; i++ {
			s.metrics.SessionClosed()
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeBody decodes an optional JSON body into v; an empty body leaves v as is.
func decodeBody(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", apperrors.ErrBadRequest, err)
	}
	return nil
}
