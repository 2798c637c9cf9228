package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dgallion1/sheetgraph/internal/chart"
	"github.com/dgallion1/sheetgraph/internal/store"
	"github.com/dgallion1/sheetgraph/internal/table"
)

// latestUpload loads the caller's upload. ok is false when the response has
// already been written (lookup failure); a missing upload is reported with
// found=false and no response written.
func (s *Server) latestUpload(w http.ResponseWriter, r *http.Request) (up store.Upload, found, ok bool) {
	sess, _ := sessionFrom(r.Context())
	up, err := s.store.LatestUpload(r.Context(), sess.User.ID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Upload{}, false, true
	}
	if err != nil {
		s.log.Error("load upload failed", "user_id", sess.User.ID, "error", err)
		jsonError(w, "Failed to retrieve data", http.StatusInternalServerError)
		return store.Upload{}, false, false
	}
	return up, true, true
}

func (s *Server) handleGetData(w http.ResponseWriter, r *http.Request) {
	up, found, ok := s.latestUpload(w, r)
	if !ok {
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"headers":    []string{},
			"rows":       [][]table.Cell{},
			"fileName":   nil,
			"rowCount":   0,
			"uploadedAt": nil,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"headers":     up.Table.Headers,
		"rows":        up.Table.Rows,
		"fileName":    up.Table.SourceName,
		"rowCount":    up.RowCount,
		"uploadedAt":  up.CreatedAt,
		"contentHash": up.ContentHash,
	})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit := s.cfg.PreviewRows
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	up, found, ok := s.latestUpload(w, r)
	if !ok {
		return
	}
	if !found {
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"headers":     []string{},
			"rows":        [][]table.Cell{},
			"rowCount":    0,
			"columnCount": 0,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"headers":     up.Table.Headers,
		"rows":        up.Table.Preview(limit),
		"rowCount":    up.Table.Len(),
		"columnCount": len(up.Table.Headers),
		"fileName":    up.Table.SourceName,
	})
}

func (s *Server) handleClearData(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	if err := s.store.ClearUpload(r.Context(), sess.User.ID); err != nil {
		s.log.Error("clear upload failed", "user_id", sess.User.ID, "error", err)
		jsonError(w, "Failed to clear data", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) handleColumns(w http.ResponseWriter, r *http.Request) {
	up, found, ok := s.latestUpload(w, r)
	if !ok {
		return
	}
	headers, numeric := []string{}, []string{}
	if found {
		headers = up.Table.Headers
		numeric = chart.NumericColumns(up.Table)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"headers": headers,
		"numeric": numeric,
	})
}

func (s *Server) handleRange(w http.ResponseWriter, r *http.Request) {
	column := r.URL.Query().Get("column")
	if column == "" {
		jsonError(w, "column query parameter is required", http.StatusBadRequest)
		return
	}

	up, found, ok := s.latestUpload(w, r)
	if !ok {
		return
	}
	rng := chart.DefaultRange
	if found {
		rng = chart.ValueRange(up.Table, column)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"column":  column,
		"min":     rng.Min,
		"max":     rng.Max,
	})
}
