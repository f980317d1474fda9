// Package api provides the HTTP API server for ModSmith: curation
// sessions with progress polling, the supported-target matrix, and a
// health check.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/modsmith/modsmith-server/internal/learning"
	"github.com/modsmith/modsmith-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	sessions *service.SessionService
	store    *learning.Store
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates the HTTP server with all routes configured.
// store may be nil when learning persistence is disabled.
func NewServer(sessions *service.SessionService, store *learning.Store, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	config := huma.DefaultConfig("ModSmith API", "1.0.0")
	RegisterErrorHandler()

	s := &Server{
		sessions: sessions,
		store:    store,
		router:   router,
		api:      humachi.New(router, config),
		logger:   logger,
	}

	s.registerHealthRoutes()
	s.registerMetaRoutes()
	s.registerCurationRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
