// Package api provides the HTTP API server and handlers for the paper manager.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kouichiii/paper-manager/internal/ratelimit"
	"github.com/kouichiii/paper-manager/internal/service"
	"github.com/kouichiii/paper-manager/internal/store"
)

// Default write rate limit: generous for interactive use, tight enough
// to stop runaway scripts.
const (
	writeLimitPerSecond = 20
	writeLimitBurst     = 40
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        store.Store
	papers       *service.PaperService
	router       *chi.Mux
	api          huma.API
	writeLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// Options configures optional server behavior.
type Options struct {
	CORSOrigins []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, papers *service.PaperService, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:        st,
		papers:       papers,
		router:       chi.NewRouter(),
		writeLimiter: ratelimit.New(writeLimitPerSecond, writeLimitBurst),
		logger:       logger,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("Paper Manager API", "1.0.0")
	humaConfig.Info.Description = "CRUD backend for a personal collection of academic papers"
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerPaperRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.writeLimiter.Stop()
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(s.recoverPanics)
	s.router.Use(middleware.Compress(5))

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Use(s.limitWrites)
}
