package server

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	apperrors "github.com/copyleftdev/SARSIM/internal/errors"
	"github.com/copyleftdev/SARSIM/internal/search"
)

// session is one interactive game: an operator picks the regions to search
// each round until the target is found.
type session struct {
	mu       sync.Mutex
	id       string
	scenario *search.Scenario
	seed     uint64
	created  time.Time
	round    int
	found    bool
	history  []RoundResult
}

// SearchResult reports one region search within a round.
type SearchResult struct {
	Region int  `json:"region"`
	Found  bool `json:"found"`
}

// RoundResult is the outcome of one session round.
type RoundResult struct {
	Round         int            `json:"round"`
	Searches      []SearchResult `json:"searches"`
	Found         bool           `json:"found"`
	Probabilities []float64      `json:"probabilities"`
}

// SessionView is the JSON form of a session.
type SessionView struct {
	ID           string                  `json:"session_id"`
	Seed         uint64                  `json:"seed,omitempty"`
	Created      time.Time               `json:"created"`
	Round        int                     `json:"round"`
	Found        bool                    `json:"found"`
	Regions      []search.RegionSnapshot `json:"regions"`
	Plans        [][]int                 `json:"plans"`
	History      []RoundResult           `json:"history"`
	TrueLocation *search.Coord           `json:"true_location,omitempty"`
	TrueRegion   int                     `json:"true_region,omitempty"`
}

type sessionRequest struct {
	Seed uint64 `json:"seed"`
}

// roundRequest selects the regions for a round. Exactly one of the fields
// must be set.
type roundRequest struct {
	Regions  []int  `json:"regions"`
	Plan     int    `json:"plan"`
	Strategy string `json:"strategy"`
}

// view must be called with ss.mu held. The target, and the seed that
// would reproduce it, are revealed once found.
func (ss *session) view(withCoords bool) SessionView {
	v := SessionView{
		ID:      ss.id,
		Created: ss.created,
		Round:   ss.round,
		Found:   ss.found,
		Regions: ss.scenario.Snapshot(withCoords),
		Plans:   search.Plans(ss.scenario.Regions()),
		History: append([]RoundResult(nil), ss.history...),
	}
	if ss.found {
		v.Seed = ss.seed
		loc := ss.scenario.TrueLocation()
		v.TrueLocation = &loc
		v.TrueRegion = ss.scenario.TrueRegion()
	}
	return v
}

// picks resolves a round request into 1-based region indices.
func (ss *session) picks(req roundRequest) ([]int, error) {
	set := 0
	if len(req.Regions) > 0 {
		set++
	}
	if req.Plan != 0 {
		set++
	}
	if req.Strategy != "" {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("%w: exactly one of regions, plan or strategy is required", apperrors.ErrBadRequest)
	}

	n := ss.scenario.Regions()
	switch {
	case req.Plan != 0:
		return search.Plan(n, req.Plan)
	case req.Strategy != "":
		st, err := search.ParseStrategy(req.Strategy)
		if err != nil {
			return nil, err
		}
		return st.Choose(ss.scenario.Probabilities())
	}

	for _, idx := range req.Regions {
		if idx < 1 || idx > n {
			return nil, fmt.Errorf("region %d outside [1, %d]: %w", idx, n, search.ErrRegionNotFound)
		}
	}
	return append([]int(nil), req.Regions...), nil
}

// play runs one round. Every picked region is searched before the result is
// checked; posteriors are only revised while the target is still missing. A
// round whose revision fails is still recorded and returned with the error.
func (ss *session) play(req roundRequest) (RoundResult, error) {
	if ss.found {
		return RoundResult{}, fmt.Errorf("session %s already found the target: %w", ss.id, apperrors.ErrConflict)
	}
	regions, err := ss.picks(req)
	if err != nil {
		return RoundResult{}, err
	}

	res := RoundResult{Round: ss.round + 1, Searches: make([]SearchResult, 0, len(regions))}
	for _, idx := range regions {
		hit, err := ss.scenario.ConductSearch(idx)
		if err != nil {
			return RoundResult{}, err
		}
		res.Searches = append(res.Searches, SearchResult{Region: idx, Found: hit})
		res.Found = res.Found || hit
	}

	var reviseErr error
	if !res.Found {
		reviseErr = ss.scenario.ReviseProbabilities()
	}
	res.Probabilities = ss.scenario.Probabilities()

	// The passes have run, so the round is recorded even when revision fails.
	ss.round = res.Round
	ss.found = res.Found
	ss.history = append(ss.history, res)
	if reviseErr != nil {
		return res, fmt.Errorf("round %d: %w", res.Round, reviseErr)
	}
	return res, nil
}

func (s *Server) createSession(req sessionRequest) (SessionView, error) {
	seed := req.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	sc, err := search.NewScenario(s.specs, rand.NewPCG(seed, 0))
	if err != nil {
		return SessionView{}, err
	}
	ss := &session{
		id:       uuid.NewString(),
		scenario: sc,
		seed:     seed,
		created:  time.Now(),
	}

	s.sessionsMu.Lock()
	if limit := s.cfg.Sessions.MaxActive; limit > 0 && len(s.sessions) >= limit {
		s.sessionsMu.Unlock()
		return SessionView{}, fmt.Errorf("%d active sessions: %w", limit, apperrors.ErrTooMany)
	}
	s.sessions[ss.id] = ss
	s.sessionsMu.Unlock()

	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	s.logger.Info("Session opened", map[string]interface{}{
		"session_id": ss.id,
		"seed":       seed,
	})

	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.view(false), nil
}

func (s *Server) lookupSession(id string) (*session, error) {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()

	ss, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	return ss, nil
}

func (s *Server) playRound(id string, req roundRequest) (RoundResult, SessionView, error) {
	ss, err := s.lookupSession(id)
	if err != nil {
		return RoundResult{}, SessionView{}, err
	}

	ss.mu.Lock()
	defer ss.mu.Unlock()

	res, err := ss.play(req)
	if res.Round == 0 {
		return RoundResult{}, SessionView{}, err
	}
	if s.metrics != nil {
		s.metrics.SessionRound()
	}
	if err != nil {
		s.logger.Warn("Round recorded without revision", map[string]interface{}{
			"session_id": id,
			"round":      res.Round,
			"error":      err.Error(),
		})
		return RoundResult{}, SessionView{}, err
	}
	if res.Found {
		s.logger.Info("Target found", map[string]interface{}{
			"session_id": id,
			"round":      res.Round,
		})
	}
	return res, ss.view(false), nil
}

func (s *Server) deleteSession(id string) error {
	s.sessionsMu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.sessionsMu.Unlock()

	if !ok {
		return fmt.Errorf("session %s: %w", id, apperrors.ErrNotFound)
	}
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	s.logger.Info("Session closed", map[string]interface{}{
		"session_id": id,
	})
	return nil
}

// handleSessionCreate handles POST /api/v1/sessions.
func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if err := decodeBody(r, &req); err != nil {
		apperrors.Write(w, err)
		return
	}
	v, err := s.createSession(req)
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

// handleSessionGet handles GET /api/v1/sessions/{id}. With ?coords=true the
// searched and unsearched coordinates of every region are included.
func (s *Server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	withCoords := false
	if raw := r.URL.Query().Get("coords"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			apperrors.Write(w, fmt.Errorf("%w: coords: %v", apperrors.ErrBadRequest, err))
			return
		}
		withCoords = b
	}

	ss, err := s.lookupSession(chi.URLParam(r, "id"))
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	ss.mu.Lock()
	v := ss.view(withCoords)
	ss.mu.Unlock()

	writeJSON(w, http.StatusOK, v)
}

// handleSessionRound handles POST /api/v1/sessions/{id}/rounds.
func (s *Server) handleSessionRound(w http.ResponseWriter, r *http.Request) {
	var req roundRequest
	if err := decodeBody(r, &req); err != nil {
		apperrors.Write(w, err)
		return
	}
	res, v, err := s.playRound(chi.URLParam(r, "id"), req)
	if err != nil {
		apperrors.Write(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result":  res,
		"session": v,
	})
}

// handleSessionDelete handles DELETE /api/v1/sessions/{id}.
func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.deleteSession(chi.URLParam(r, "id")); err != nil {
		apperrors.Write(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
