// Package server assembles the HTTP surface of the helpdesk.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/helpdesk/internal/backlog"
	"github.com/ziadkadry99/helpdesk/internal/chat"
	"github.com/ziadkadry99/helpdesk/internal/querylog"
	"github.com/ziadkadry99/helpdesk/internal/search"
)

// SystemName is reported by the status endpoint.
const SystemName = "FUUAST Academic AI"

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
	Version  string
}

// Deps are the feature services the server exposes. Nil members are not
// mounted.
type Deps struct {
	Sessions *chat.Manager
	Search   *search.Service
	QueryLog *querylog.Store
	Backlog  *backlog.Store
}

// Server is the helpdesk HTTP server.
type Server struct {
	cfg        Config
	deps       Deps
	logger     *slog.Logger
	router     chi.Router
	httpServer *http.Server
}

type statusResponse struct {
	Status  string `json:"status"`
	System  string `json:"system"`
	Version string `json:"version"`
}

// New creates a server with all routes registered.
func New(cfg Config, deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	s := &Server{cfg: cfg, deps: deps, logger: logger}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
		corsOpts.AllowCredentials = false
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, statusResponse{Status: "online", System: SystemName, Version: s.cfg.Version})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		if s.deps.Search != nil {
			search.RegisterRoutes(r, s.deps.Search)
		}
		if s.deps.Sessions != nil {
			chat.RegisterRoutes(r, s.deps.Sessions)
		}
		if s.deps.QueryLog != nil {
			querylog.RegisterRoutes(r, s.deps.QueryLog)
		}
		if s.deps.Backlog != nil {
			backlog.RegisterRoutes(r, s.deps.Backlog)
		}
	})
	if s.deps.Sessions != nil {
		chat.RegisterWebSocket(r, s.deps.Sessions)
	}

	return r
}

// Router returns the chi router.
func (s *Server) Router() chi.Router { return s.router }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start listens on the configured port until Shutdown is called, in which
// case it returns nil.
func (s *Server) Start() error {
	s.logger.Info("helpdesk server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server and waits for in-flight
// conversation cycles until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if s.deps.Sessions == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.deps.Sessions.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn("shutdown deadline reached with conversation cycles in flight")
		return ctx.Err()
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
