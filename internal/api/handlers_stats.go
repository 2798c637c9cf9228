package api

import (
	"net/http"
)

func (s *Server) handleUploadStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, "upload stats unavailable", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   s.stats.Snapshot(),
	})
}
