package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/sheetgraph/internal/store"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
)

type ctxKey int

const sessionKey ctxKey = iota

const cookieTokenKey = "token"

// SessionAuth resolves the caller's session from a bearer token or, failing
// that, the session cookie, and rejects the request when neither is valid.
func SessionAuth(st store.Store, cookies sessions.Store, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := requestToken(r, cookies)
			if token == "" {
				jsonError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			sess, err := st.LookupSession(r.Context(), token)
			switch {
			case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrSessionExpired):
				jsonError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			case err != nil:
				log.Error("session lookup failed",
					"request_id", middleware.GetReqID(r.Context()),
					"error", err,
				)
				jsonError(w, "Authentication failed", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestToken(r *http.Request, cookies sessions.Store) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if cookies == nil {
		return ""
	}
	cs, err := cookies.Get(r, SessionCookieName)
	if err != nil {
		return ""
	}
	token, _ := cs.Values[cookieTokenKey].(string)
	return token
}

// sessionFrom returns the session attached by SessionAuth.
func sessionFrom(ctx context.Context) (store.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(store.Session)
	return sess, ok
}

// RequestLogger logs incoming requests.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: 200}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
