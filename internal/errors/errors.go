// Package errors maps simulator failures onto HTTP responses.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/copyleftdev/SARSIM/internal/montecarlo"
	"github.com/copyleftdev/SARSIM/internal/search"
)

// ErrNotFound is returned for an unknown simulation or session id.
var ErrNotFound = stderrors.New("not found")

// ErrConflict is returned when the requested transition is not allowed in the
// resource's current state.
var ErrConflict = stderrors.New("conflict")

// ErrBadRequest wraps malformed input that is not a domain error.
var ErrBadRequest = stderrors.New("bad request")

// ErrTooMany is returned when a capacity limit is reached.
var ErrTooMany = stderrors.New("capacity exhausted")

// Code classifies err with a stable machine-readable code and HTTP status.
func Code(err error) (string, int) {
	switch {
	case err == nil:
		return "", http.StatusOK
	case stderrors.Is(err, search.ErrInvalidGeometry):
		return "invalid_geometry", http.StatusBadRequest
	case stderrors.Is(err, search.ErrInvalidStrategy):
		return "invalid_strategy", http.StatusBadRequest
	case stderrors.Is(err, search.ErrEmptyScenario):
		return "empty_scenario", http.StatusBadRequest
	case stderrors.Is(err, search.ErrRegionNotFound):
		return "region_not_found", http.StatusBadRequest
	case stderrors.Is(err, montecarlo.ErrInvalidTrials):
		return "invalid_trials", http.StatusBadRequest
	case stderrors.Is(err, ErrBadRequest):
		return "bad_request", http.StatusBadRequest
	case stderrors.Is(err, ErrNotFound):
		return "not_found", http.StatusNotFound
	case stderrors.Is(err, ErrConflict):
		return "conflict", http.StatusConflict
	case stderrors.Is(err, ErrTooMany):
		return "too_many", http.StatusTooManyRequests
	case stderrors.Is(err, search.ErrDegenerateBelief):
		return "degenerate_belief", http.StatusInternalServerError
	case stderrors.Is(err, montecarlo.ErrRoundLimitExceeded):
		return "round_limit_exceeded", http.StatusInternalServerError
	case stderrors.Is(err, context.Canceled):
		return "cancelled", http.StatusConflict
	default:
		return "internal", http.StatusInternalServerError
	}
}

// Write sends err as a JSON body {"error": ..., "code": ...} with the status
// Code assigns to it.
func Write(w http.ResponseWriter, err error) {
	code, status := Code(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}
