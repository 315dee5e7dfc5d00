package server

import (
	"encoding/json"
	"net/http"

	"switchyard-ai/switchyard/pkg/health"
)

// handleHealth serves the aggregate system health view. A critical
// overall status is reported with a 503 status code.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sys := s.health.GetSystemHealth()

	code := http.StatusOK
	if sys.Overall == health.StatusCritical {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, sys)
}

// handleProviders serves the per-provider health records.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sys := s.health.GetSystemHealth()
	writeJSON(w, http.StatusOK, sys.Providers)
}

// handleStats serves the routing statistics snapshot.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, s.stats.Stats())
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
