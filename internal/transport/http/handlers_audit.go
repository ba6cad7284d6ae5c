package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type auditEntryResponse struct {
	Time       string `json:"time"`
	Method     string `json:"method"`
	Path       string `json:"path"`
	Status     int    `json:"status"`
	ActorID    string `json:"actor_id,omitempty"`
	ClientIP   string `json:"client_ip"`
	DurationMS int64  `json:"duration_ms"`
}

// handleAuditTrail returns the most recent requests, oldest first.
func (s *Server) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	entries := s.recorder.Snapshot()

	responses := make([]auditEntryResponse, len(entries))
	for i, e := range entries {
		resp := auditEntryResponse{
			Time:       e.Time.Format(time.RFC3339),
			Method:     e.Method,
			Path:       e.Path,
			Status:     e.Status,
			ClientIP:   e.ClientIP,
			DurationMS: e.Duration.Milliseconds(),
		}
		if e.ActorID != uuid.Nil {
			resp.ActorID = e.ActorID.String()
		}
		responses[i] = resp
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"entries":  responses,
		"capacity": s.recorder.Capacity(),
	})
}
