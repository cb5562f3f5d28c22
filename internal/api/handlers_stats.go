package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": s.proc.Stats().Snapshot(),
		"runs":      s.proc.Runs().Len(),
	})
}
