package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/copyleftdev/SARSIM/internal/errors"
	"github.com/copyleftdev/SARSIM/internal/montecarlo"
	"github.com/copyleftdev/SARSIM/internal/search"
)

// Simulation job statuses.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
)

// SimulationState tracks one asynchronous Monte Carlo batch. Mutable fields
// are guarded by Server.simulationsMu; completed is updated lock-free by the
// trial pool.
type SimulationState struct {
	ID          string
	Status      string
	Strategies  []search.Strategy
	Trials      int
	Seed        uint64
	StartTime   time.Time
	EndTime     *time.Time
	Results     []montecarlo.Result
	Err         string
	LastUpdated time.Time

	cancel    context.CancelFunc
	completed atomic.Int64
}

// SimulationView is the JSON form of a SimulationState.
type SimulationView struct {
	ID         string              `json:"simulation_id"`
	Status     string              `json:"status"`
	Strategies []search.Strategy   `json:"strategies"`
	Trials     int                 `json:"trials"`
	Seed       uint64              `json:"seed"`
	Progress   float64             `json:"progress"`
	StartTime  time.Time           `json:"start_time"`
	EndTime    *time.Time          `json:"end_time,omitempty"`
	Results    []montecarlo.Result `json:"results,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// view must be called with simulationsMu held.
func (st *SimulationState) view() SimulationView {
	total := st.Trials * len(st.Strategies)
	progress := 1.0
	if total > 0 {
		progress = float64(st.completed.Load()) / float64(total)
	}
	if progress > 1 {
		progress = 1
	}
	return SimulationView{
		ID:         st.ID,
		Status:     st.Status,
		Strategies: st.Strategies,
		Trials:     st.Trials,
		Seed:       st.Seed,
		Progress:   progress,
		StartTime:  st.StartTime,
		EndTime:    st.EndTime,
		Results:    st.Results,
		Error:      st.Err,
	}
}

type simulationRequest struct {
	Strategies []string `json:"strategies"`
	Trials     int      `json:"trials"`
	Seed       uint64   `json:"seed"`
}

// progressRecorder counts finished trials and forwards them to next.
type progressRecorder struct {
	done *atomic.Int64
	next montecarlo.Recorder
}

func (p progressRecorder) ObserveTrial(strategy search.Strategy, rounds int) {
	p.done.Add(1)
	if p.next != nil {
		p.next.ObserveTrial(strategy, rounds)
	}
}

// startSimulation validates req, registers a new job and runs it in the
// background.
func (s *Server) startSimulation(req simulationRequest) (SimulationView, error) {
	strategies := make([]search.Strategy, 0, len(req.Strategies))
	for _, name := range req.Strategies {
		st, err := search.ParseStrategy(name)
		if err != nil {
			return SimulationView{}, err
		}
		strategies = append(strategies, st)
	}
	if len(strategies) == 0 {
		strategies = search.Strategies()
	}

	trials := req.Trials
	switch {
	case trials < 0:
		return SimulationView{}, fmt.Errorf("%w: %d", montecarlo.ErrInvalidTrials, trials)
	case trials == 0:
		trials = s.cfg.Simulation.Trials
	case s.cfg.Simulation.MaxTrials > 0 && trials > s.cfg.Simulation.MaxTrials:
		return SimulationView{}, fmt.Errorf("%w: trials %d exceeds limit %d",
			apperrors.ErrBadRequest, trials, s.cfg.Simulation.MaxTrials)
	}

	seed := req.Seed
	if seed == 0 {
		seed = s.cfg.Simulation.Seed
	}

	now := time.Now()
	state := &SimulationState{
		ID:          uuid.NewString(),
		Status:      StatusPending,
		Strategies:  strategies,
		Trials:      trials,
		StartTime:   now,
		LastUpdated: now,
	}

	rec := progressRecorder{done: &state.completed}
	if s.metrics != nil {
		rec.next = s.metrics
	}
	h, err := montecarlo.NewHarness(montecarlo.Config{
		Regions:   s.specs,
		Workers:   s.cfg.Simulation.Workers,
		Seed:      seed,
		MaxRounds: s.cfg.Simulation.MaxRounds,
	}, montecarlo.WithLogger(s.engineLog), montecarlo.WithRecorder(rec))
	if err != nil {
		return SimulationView{}, err
	}
	state.Seed = h.Seed()

	ctx, cancel := context.WithCancel(context.Background())
	state.cancel = cancel

	s.simulationsMu.Lock()
	s.simulations[state.ID] = state
	v := state.view()
	s.simulationsMu.Unlock()

	s.logger.Info("Simulation started", map[string]interface{}{
		"simulation_id": state.ID,
		"trials":        trials,
		"strategies":    len(strategies),
		"seed":          state.Seed,
	})

	go s.runSimulation(ctx, h, state)
	return v, nil
}

// runSimulation executes the batch and records its outcome.
func (s *Server) runSimulation(ctx context.Context, h *montecarlo.Harness, state *SimulationState) {
	defer state.cancel()

	if s.metrics != nil {
		s.metrics.SimulationStarted()
		defer s.metrics.SimulationFinished()
	}

	s.simulationsMu.Lock()
	if state.Status == StatusPending {
		state.Status = StatusRunning
		state.LastUpdated = time.Now()
	}
	s.simulationsMu.Unlock()

	results, err := h.Compare(ctx, state.Trials, state.Strategies...)

	s.simulationsMu.Lock()
	defer s.simulationsMu.Unlock()

	now := time.Now()
	state.LastUpdated = now
	if state.Status == StatusCancelled {
		return
	}
	state.EndTime = &now

	switch {
	case errors.Is(err, context.Canceled):
		state.Status = StatusCancelled
	case err != nil:
		s.logger.Error("Simulation failed", map[string]interface{}{
			"simulation_id": state.ID,
			"error":         err.Error(),
		})
		state.Status = StatusFailed
		state.Err = err.Error()
	default:
		state.Status = StatusCompleted
		state.Results = results
		s.logger.Info("Simulation completed", map[string]interface{}{
			"simulation_id": state.ID,
			"duration":      now.Sub(state.StartTime).String(),
		})
	}
}

func (s *Server) simulationStatus(id string) (SimulationView, error) {
	s.simulationsMu.RLock()
	defer s.simulationsMu.RUnlock()

	state, ok := s.simulations[id]
	if !ok {
		return SimulationView{}, fmt.Errorf("simulation %s: %w", id, apperrors.ErrNotFound)
	}
	return state.view(), nil
}

func (s *Server) cancelSimulation(id string) (SimulationView, error) {
	s.simulationsMu.Lock()
	defer s.simulationsMu.Unlock()

	state, ok := s.simulations[id]
	if !ok {
		return SimulationView{}, fmt.Errorf("simulation %s: %w", id, apperrors.ErrNotFound)
	}

	switch state.Status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return SimulationView{}, fmt.Errorf("cannot cancel simulation with status %s: %w", state.Status, apperrors.ErrConflict)
	}

	if state.cancel != nil {
		state.cancel()
	}
	now := time.Now()
	state.Status = StatusCancelled
	state.EndTime = &now
	state.LastUpdated = now

	s.logger.Info("Simulation cancelled", map[string]interface{}{
		"simulation_id": id,
	})
	return state.view(), nil
}

// handleSimulate handles POST /api/v1/simulations.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if err := decodeBody(r, &req); err != nil {
		apperrors.Write(w, err)
		return
	}

	v, err := s.startSimulation(req)
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, v)
}

// handleSimulationStatus handles GET /api/v1/simulations/{id}.
func (s *Server) handleSimulationStatus(w http.ResponseWriter, r *http.Request) {
	v, err := s.simulationStatus(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleSimulationCancel handles DELETE /api/v1/simulations/{id}.
func (s *Server) handleSimulationCancel(w http.ResponseWriter, r *http.Request) {
	v, err := s.cancelSimulation(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
