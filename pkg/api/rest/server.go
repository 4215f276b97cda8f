package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/arjunmehta/opticscore/internal/runs"
	"github.com/arjunmehta/opticscore/pkg/api/rest/middleware"
	"github.com/arjunmehta/opticscore/pkg/observability"
)

// Config holds the REST server configuration.
type Config struct {
	Host        string
	Port        int
	CORSEnabled bool
	CORSOrigins []string
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
}

// Server represents the REST API server fronting the run manager and run
// store directly — there is no RPC hop behind it.
type Server struct {
	config     Config
	handler    *Handler
	httpServer *http.Server
	mux        *http.ServeMux
}

// NewServer creates a new REST API server wired to the given run manager,
// run store, and metrics registry.
func NewServer(config Config, manager *runs.Manager, store *runs.Store, cache *runs.ResultCache, metrics *observability.Metrics, logger *observability.Logger) (*Server, error) {
	handler := NewHandler(manager, store, cache, metrics, logger)

	server := &Server{
		config:  config,
		handler: handler,
		mux:     http.NewServeMux(),
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.withMiddleware(server.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/v1/health", s.handler.HealthCheck)
	s.mux.HandleFunc("/v1/stats", s.handler.GetStats)

	s.mux.HandleFunc("/v1/owners", s.handler.Owners)
	s.mux.HandleFunc("/v1/owners/", s.handler.OwnerByID)

	s.mux.HandleFunc("/v1/runs", s.handler.Runs)
	s.mux.HandleFunc("/v1/runs/", s.handler.RunByID)
	s.mux.HandleFunc("/v1/runs/batch", s.handler.BatchRuns)

	s.mux.HandleFunc("/docs", ServeSwaggerUI)
	s.mux.HandleFunc("/docs/openapi.yaml", ServeDocs)
}

// withMiddleware wraps the handler with all middleware.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	handler = s.loggingMiddleware(handler)

	if s.config.CORSEnabled {
		handler = corsMiddleware(s.config.CORSOrigins)(handler)
	}

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit)
	handler = middleware.RateLimitMiddleware(rateLimiter)(handler)

	handler = middleware.AuthMiddleware(s.config.Auth)(handler)

	return handler
}

// Handler returns the fully wrapped HTTP handler, for embedding in a test
// server or alternate listener.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the REST API server.
func (s *Server) Start() error {
	s.handler.logger.Info(fmt.Sprintf("Starting REST API server on %s:%d", s.config.Host, s.config.Port))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.handler.logger.Info("Shutting down REST API server")
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs all HTTP requests and records request metrics.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		s.handler.metrics.RecordRequest(r.Method, fmt.Sprintf("%d", wrapped.statusCode), duration)
		s.handler.logger.Info(fmt.Sprintf("%s %s %d", r.Method, r.URL.Path, wrapped.statusCode), map[string]interface{}{
			"duration": duration,
		})
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware adds CORS headers.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				allowed = true
				origin = "*"
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
