// Package api exposes the Vivilio services over HTTP: huma operations on a
// chi router, plus a few raw chi handlers for multipart uploads and images.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/vivilio/vivilio-server/internal/media/images"
	"github.com/vivilio/vivilio-server/internal/metrics"
	"github.com/vivilio/vivilio-server/internal/ratelimit"
	"github.com/vivilio/vivilio-server/internal/store"
)

// Options tunes the HTTP surface. Zero values pick the defaults.
type Options struct {
	CORSOrigins       []string
	AuthRatePerMinute int
	MaxUploadSize     int64
	// Metrics enables request instrumentation and GET /metrics when set.
	Metrics *metrics.Registry
}

// Server is the HTTP handler for the Vivilio API.
type Server struct {
	store           store.Store
	services        *Services
	covers          *images.Storage
	metrics         *metrics.Registry
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
	maxUploadSize   int64
}

// NewServer wires middleware and every route.
func NewServer(st store.Store, services *Services, covers *images.Storage, opts Options, logger *slog.Logger) *Server {
	if opts.AuthRatePerMinute <= 0 {
		opts.AuthRatePerMinute = DefaultAuthRatePerMinute
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if opts.Metrics != nil {
		router.Use(opts.Metrics.Middleware)
	}
	router.Use(authMiddleware(services.Auth))

	api := humachi.New(router, newHumaConfig())
	RegisterErrorHandler(logger)

	s := &Server{
		store:           st,
		services:        services,
		covers:          covers,
		metrics:         opts.Metrics,
		router:          router,
		api:             api,
		logger:          logger,
		authRateLimiter: NewRateLimiter(opts.AuthRatePerMinute, time.Minute, opts.AuthRatePerMinute),
		maxUploadSize:   opts.MaxUploadSize,
	}
	s.registerRoutes()

	return s
}

// newHumaConfig is shared by the server and the handler tests.
func newHumaConfig() huma.Config {
	config := huma.DefaultConfig("Vivilio API", "1.0.0")
	config.Info.Description = "Book reviews and reading communities."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)
	return config
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerGenreRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerCommunityRoutes()
	s.registerContentRoutes()
	s.registerSearchRoutes()
	s.registerImageRoutes()

	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}
