package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/sheetgraph/internal/parser"
	"github.com/dgallion1/sheetgraph/internal/store"
)

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.stats.Fail()
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			jsonError(w, fmt.Sprintf("File size exceeds %s limit", humanBytes(s.cfg.MaxUploadBytes)), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.stats.Fail()
		jsonError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	data, err := parser.ReadUpload(file, filename, s.cfg.MaxUploadBytes)
	if err != nil {
		s.stats.Fail()
		var perr *parser.ParseError
		if errors.As(err, &perr) {
			jsonError(w, "failed to read file", http.StatusInternalServerError)
			return
		}
		s.rejectUpload(w, filename, err)
		return
	}

	start := time.Now()
	tbl, err := parser.ParseBytes(data, filename)
	if err != nil {
		s.stats.Fail()
		s.log.Warn("workbook parse failed",
			"user_id", sess.User.ID,
			"filename", filename,
			"error", err,
		)
		jsonError(w, "Error processing file: "+parseReason(err), http.StatusUnprocessableEntity)
		return
	}
	s.stats.Observe(time.Since(start), tbl.Len())

	hash := store.ContentHashHex(data)
	if err := s.store.SaveUpload(r.Context(), sess.User.ID, tbl, hash); err != nil {
		s.log.Error("save upload failed", "user_id", sess.User.ID, "filename", filename, "error", err)
		jsonError(w, "Failed to save data", http.StatusInternalServerError)
		return
	}

	s.log.Info("upload stored",
		"user_id", sess.User.ID,
		"filename", filename,
		"rows", tbl.Len(),
		"columns", len(tbl.Headers),
		"content_hash", hash[:16],
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"message":     "File processed successfully",
		"filename":    filename,
		"rowCount":    tbl.Len(),
		"columnCount": len(tbl.Headers),
		"headers":     tbl.Headers,
		"contentHash": hash,
	})
}

func (s *Server) rejectUpload(w http.ResponseWriter, filename string, err error) {
	switch {
	case errors.Is(err, parser.ErrUnsupportedType):
		jsonError(w, fmt.Sprintf("Invalid file type %q. Only .xls and .xlsx files are allowed", filepath.Ext(filename)), http.StatusBadRequest)
	case errors.Is(err, parser.ErrTooLarge):
		jsonError(w, fmt.Sprintf("File size exceeds %s limit", humanBytes(s.cfg.MaxUploadBytes)), http.StatusRequestEntityTooLarge)
	default:
		jsonError(w, err.Error(), http.StatusBadRequest)
	}
}

// parseReason hides library internals except for the failures a user can act on.
func parseReason(err error) string {
	switch {
	case errors.Is(err, parser.ErrEmptyWorkbook):
		return "the first worksheet is empty"
	case errors.Is(err, parser.ErrNoSheet):
		return "the workbook has no worksheet"
	default:
		return "the file is not a readable Excel workbook"
	}
}

func humanBytes(n int64) string {
	const mb = 1 << 20
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]any{"success": false, "error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	if name == "" || name == "." || name == ".." {
		name = "unnamed"
	}
	return name
}
