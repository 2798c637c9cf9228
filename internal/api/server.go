package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dgallion1/sheetgraph/internal/auth"
	"github.com/dgallion1/sheetgraph/internal/config"
	"github.com/dgallion1/sheetgraph/internal/stats"
	"github.com/dgallion1/sheetgraph/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

// SessionCookieName is the cookie carrying the session token for browser
// clients that do not send an Authorization header.
const SessionCookieName = "sheetgraph_session"

// Server is the HTTP API server for sheetgraph.
type Server struct {
	router  chi.Router
	store   store.Store
	authn   auth.Authenticator
	cookies sessions.Store
	stats   *stats.ParseStats
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server. An empty session secret
// gets a random cookie key, so cookies do not survive a restart.
func NewServer(st store.Store, authn auth.Authenticator, ps *stats.ParseStats, log *slog.Logger, cfg config.Config) (*Server, error) {
	key := []byte(cfg.SessionSecret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		if key == nil {
			return nil, errors.New("generate session cookie key")
		}
	}
	cookies := sessions.NewCookieStore(key)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Mode == config.ModeServer,
		SameSite: http.SameSiteLaxMode,
	}

	if ps == nil {
		ps = stats.NewParseStats(cfg.StatsWindow)
	}

	s := &Server{
		store:   st,
		authn:   authn,
		cookies: cookies,
		stats:   ps,
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Post("/api/auth/login", s.handleLogin)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(SessionAuth(s.store, s.cookies, s.log))

		r.Post("/api/auth/logout", s.handleLogout)
		r.Get("/api/auth/session", s.handleSession)

		r.Post("/api/upload", s.handleUpload)

		r.Get("/api/data", s.handleGetData)
		r.Delete("/api/data", s.handleClearData)
		r.Get("/api/data/preview", s.handlePreview)
		r.Get("/api/data/columns", s.handleColumns)
		r.Get("/api/data/range", s.handleRange)

		r.Get("/api/chart", s.handleChart)
		r.Get("/api/stats/uploads", s.handleUploadStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"mode":   s.cfg.Mode,
	})
}
