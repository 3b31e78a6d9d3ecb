// Package api provides the HTTP API server and handlers for the Bookshelf catalog.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/cache"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/service"
	"github.com/BartoszGrab/ProgramowanieZespolowe2025-sub000/internal/store/sqlite"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           *sqlite.Store
	cache           cache.Cache
	catalog         *service.CatalogService
	resolver        *service.ResolverService
	recommendations *service.RecommendationService
	router          *chi.Mux
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	store *sqlite.Store,
	c cache.Cache,
	catalog *service.CatalogService,
	resolver *service.ResolverService,
	recommendations *service.RecommendationService,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:           store,
		cache:           c,
		catalog:         catalog,
		resolver:        resolver,
		recommendations: recommendations,
		router:          chi.NewRouter(),
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Server health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.Post("/resolve", s.handleResolveBook)
			r.Get("/search", s.handleSearchCatalog)
			r.Get("/{id}", s.handleGetBook)
		})

		r.Route("/recommendations", func(r chi.Router) {
			r.Post("/", s.handleGenerateRecommendations)
			r.Get("/", s.handleGetSavedRecommendations)
			r.Get("/health", s.handleEngineHealth)
		})
	})
}
