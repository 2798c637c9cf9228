package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/sheetgraph/internal/auth"
	"github.com/dgallion1/sheetgraph/internal/store"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 64*1024)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Invalid JSON input", http.StatusBadRequest)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		jsonError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := s.authn.Authenticate(r.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.log.Info("login rejected", "username", req.Username)
		jsonError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	if err != nil {
		s.log.Error("login failed", "username", req.Username, "error", err)
		jsonError(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	sess, err := s.store.CreateSession(r.Context(), store.User{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role,
		Name:     user.Name,
		Email:    user.Email,
	}, s.cfg.SessionTTL)
	if err != nil {
		s.log.Error("create session failed", "username", req.Username, "error", err)
		jsonError(w, "Authentication failed", http.StatusInternalServerError)
		return
	}

	if err := s.setSessionCookie(w, r, sess.Token); err != nil {
		s.log.Warn("session cookie not saved", "error", err)
	}

	s.log.Info("login", "user_id", user.ID, "username", user.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"user":       user,
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())

	err := s.store.DeleteSession(r.Context(), sess.Token)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	if err != nil {
		s.log.Error("delete session failed", "user_id", sess.User.ID, "error", err)
		jsonError(w, "Logout failed", http.StatusInternalServerError)
		return
	}

	if err := s.clearSessionCookie(w, r); err != nil {
		s.log.Warn("session cookie not cleared", "error", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out successfully",
	})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"user":       auth.FromRecord(sess.User),
		"expires_at": sess.ExpiresAt,
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, r *http.Request, token string) error {
	cs, err := s.cookies.Get(r, SessionCookieName)
	if err != nil && cs == nil {
		return err
	}
	cs.Values[cookieTokenKey] = token
	return cs.Save(r, w)
}

func (s *Server) clearSessionCookie(w http.ResponseWriter, r *http.Request) error {
	cs, err := s.cookies.Get(r, SessionCookieName)
	if err != nil && cs == nil {
		return err
	}
	delete(cs.Values, cookieTokenKey)
	cs.Options.MaxAge = -1
	return cs.Save(r, w)
}
