// Package apiserver provides the JSON API HTTP server
package apiserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/savvykitchen/savvy/internal/infrastructure/config"
	"github.com/savvykitchen/savvy/internal/infrastructure/http/handlers"
	"github.com/savvykitchen/savvy/internal/infrastructure/http/middleware"
	"github.com/savvykitchen/savvy/internal/infrastructure/monitoring"
	apperrors "github.com/savvykitchen/savvy/pkg/errors"
	"github.com/savvykitchen/savvy/pkg/healthcheck"
)

const requestTimeout = 60 * time.Second

// Server represents the JSON API HTTP server
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	server  *http.Server
	router  *chi.Mux
	api     *handlers.APIHandlers
	health  *healthcheck.HealthCheck
	metrics *monitoring.MetricsCollector
}

// NewServer creates a new API server instance. metrics may be nil when
// metrics are disabled.
func NewServer(
	cfg *config.Config,
	log *zap.Logger,
	api *handlers.APIHandlers,
	health *healthcheck.HealthCheck,
	metrics *monitoring.MetricsCollector,
) *Server {
	s := &Server{
		config:  cfg,
		logger:  log.Named("http"),
		api:     api,
		health:  health,
		metrics: metrics,
	}

	s.router = s.setupRoutes()

	var handler http.Handler = s.router
	if cfg.Monitoring.EnableTracing {
		handler = otelhttp.NewHandler(s.router, "savvy-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}

	s.server = &http.Server{
		Addr:           net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:        handler,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return s
}

// setupRoutes configures the router
func (s *Server) setupRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Security())
	if s.config.Server.EnableCORS {
		r.Use(middleware.CORS(s.config.Server.AllowedOrigins))
	}
	if s.metrics != nil {
		r.Use(middleware.Metrics(s.metrics))
	}

	r.NotFound(s.notFound)
	r.MethodNotAllowed(s.methodNotAllowed)

	// Operational endpoints skip rate limiting
	r.Get(s.config.Monitoring.HealthCheckPath, s.health.Handler())
	r.Get("/health/live", s.health.LivenessHandler())
	r.Get("/health/ready", s.health.ReadinessHandler())
	if s.metrics != nil {
		r.Method(http.MethodGet, s.config.Monitoring.MetricsPath, s.metrics.Handler())
	}
	r.Get("/openapi.yaml", serveOpenAPISpec)
	r.Get("/docs", serveDocs)

	r.Group(func(r chi.Router) {
		if s.config.RateLimit.Enable {
			r.Use(middleware.RateLimit(s.config.RateLimit.RequestsPerMin, s.config.RateLimit.BurstSize))
		}
		r.Use(chimiddleware.Timeout(requestTimeout))
		r.Use(middleware.JSONOnly())

		s.api.Routes(r)
	})

	return r
}

// Router exposes the handler tree for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Server returns the underlying HTTP server instance
func (s *Server) Server() *http.Server {
	return s.server
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusNotFound, apperrors.NewNotFoundError("route"))
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, http.StatusMethodNotAllowed,
		apperrors.NewBadRequestError(fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path)))
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, appErr *apperrors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apperrors.ToErrorResponse(appErr, middleware.GetRequestID(r.Context()))); err != nil {
		s.logger.Error("Failed to encode error response", zap.Error(err))
	}
}
