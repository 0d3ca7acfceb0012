package api

import (
	"net/http"

	"github.com/vytor/upsimu/internal/logger"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady returns 200 when the database and the attempt store answer a ping, 503 otherwise.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	checks := []struct {
		name string
		p    Pinger
	}{
		{"database", s.DB},
		{"attempt_store", s.Store},
	}
	for _, c := range checks {
		if c.p == nil {
			continue
		}
		if err := c.p.Ping(ctx); err != nil {
			log.Warn("readiness check failed - %s: %v", c.name, err)
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{
				"status":    "unavailable",
				"component": c.name,
			})
			return
		}
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}
