package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/copyleftdev/SARSIM/internal/errors"
)

// JSON-RPC 2.0 error codes.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcServerError    = -32000
)

var errInvalidParams = errors.New("invalid params")

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request struct {
		JSONRPC string            `json:"jsonrpc"`
		ID      interface{}       `json:"id"`
		Method  string            `json:"method"`
		Params  []json.RawMessage `json:"params,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, rpcParseError, "Parse error", nil, nil)
		return
	}

	// Validate JSON-RPC 2.0 request
	if request.JSONRPC != "2.0" {
		s.respondWithError(w, rpcInvalidRequest, "Invalid Request", nil, nil)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "simulation.start":
		var p simulationRequest
		if err = decodeParams(request.Params, &p); err == nil {
			result, err = s.startSimulation(p)
		}
	case "simulation.status":
		var p struct {
			ID string `json:"simulation_id"`
		}
		if err = decodeParams(request.Params, &p); err == nil {
			result, err = s.simulationStatus(p.ID)
		}
	case "simulation.cancel":
		var p struct {
			ID string `json:"simulation_id"`
		}
		if err = decodeParams(request.Params, &p); err == nil {
			result, err = s.cancelSimulation(p.ID)
		}
	default:
		s.respondWithError(w, rpcMethodNotFound, "Method not found", request.ID, nil)
		return
	}

	if err != nil {
		if errors.Is(err, errInvalidParams) {
			s.respondWithError(w, rpcInvalidParams, err.Error(), request.ID, nil)
			return
		}
		kind, _ := apperrors.Code(err)
		s.respondWithError(w, rpcServerError, err.Error(), request.ID, kind)
		return
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// decodeParams decodes the first positional parameter, which must be an
// object, into v.
func decodeParams(params []json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return fmt.Errorf("%w: missing required parameters", errInvalidParams)
	}
	if err := json.Unmarshal(params[0], v); err != nil {
		return fmt.Errorf("%w: expected object: %v", errInvalidParams, err)
	}
	return nil
}

// respondWithError sends a JSON-RPC 2.0 error response. A non-nil data is
// attached to the error object.
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id, data interface{}) {
	s.logger.Warn("RPC error", map[string]interface{}{
		"rpc_code": code,
		"message":  message,
	})

	rpcErr := map[string]interface{}{
		"code":    code,
		"message": message,
	}
	if data != nil {
		rpcErr["data"] = data
	}

	response := map[string]interface{}{
		"jsonrpc": "2.0",
		"error":   rpcErr,
		"id":      id,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
