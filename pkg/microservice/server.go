// Package microservice hosts the HTTP surface of the listen daemon.
package microservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/illmade-knight/go-lyricgetter/pkg/cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Service defines the lifecycle of a long-running component of the daemon.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// BaseServerConfig configures the HTTP surface.
type BaseServerConfig struct {
	HTTPPort string
	// AllowedOrigins enables CORS on state routes for browser overlays.
	// Empty disables CORS.
	AllowedOrigins []string
}

// BaseServer serves /healthz and /metrics, plus whatever routes are added to Mux.
type BaseServer struct {
	Logger         zerolog.Logger
	HTTPPort       string
	allowedOrigins []string
	httpServer     *http.Server
	mux            *chi.Mux
	actualAddr     string
	mu             sync.RWMutex
}

// NewBaseServer creates and initializes a new BaseServer.
func NewBaseServer(logger zerolog.Logger, httpPort string) *BaseServer {
	return NewBaseServerWithConfig(logger, BaseServerConfig{HTTPPort: httpPort})
}

// NewBaseServerWithConfig creates a BaseServer from cfg.
func NewBaseServerWithConfig(logger zerolog.Logger, cfg BaseServerConfig) *BaseServer {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/healthz", HealthzHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return &BaseServer{
		Logger:         logger.With().Str("component", "BaseServer").Logger(),
		HTTPPort:       cfg.HTTPPort,
		allowedOrigins: cfg.AllowedOrigins,
		mux:            r,
		httpServer: &http.Server{
			Addr:    cfg.HTTPPort,
			Handler: r,
		},
	}
}

// Start initiates the HTTP server in a background goroutine.
func (s *BaseServer) Start() error {
	listener, err := net.Listen("tcp", s.HTTPPort)
	if err != nil {
		return fmt.Errorf("failed to listen on port %s: %w", s.HTTPPort, err)
	}

	s.mu.Lock()
	s.actualAddr = listener.Addr().String()
	s.mu.Unlock()

	s.Logger.Info().Str("address", s.actualAddr).Msg("HTTP server starting to listen")

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	return nil
}

// Shutdown gracefully stops the HTTP server, respecting the provided context's deadline.
func (s *BaseServer) Shutdown(ctx context.Context) error {
	s.Logger.Info().Msg("Shutting down HTTP server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.Logger.Error().Err(err).Msg("Error during HTTP server shutdown.")
		return err
	}
	return nil
}

// GetHTTPPort returns the port the server is actually listening on, which
// differs from the configured one when ":0" was requested.
func (s *BaseServer) GetHTTPPort() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, port, err := net.SplitHostPort(s.actualAddr)
	if err != nil {
		return s.HTTPPort
	}
	return ":" + port
}

// Mux returns the underlying router.
func (s *BaseServer) Mux() chi.Router {
	return s.mux
}

// HealthzHandler responds with 200 OK.
func HealthzHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// StateLookup returns the JSON-encodable state recorded for a key.
type StateLookup func(ctx context.Context, key string) (any, error)

// HandleState serves GET {prefix}{key} from lookup. An error wrapping
// cache.ErrNotFound is a 404; any other lookup error is a 500.
// The route answers CORS preflights when origins are configured.
func (s *BaseServer) HandleState(prefix string, lookup StateLookup) {
	s.mux.Group(func(r chi.Router) {
		if len(s.allowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.allowedOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodOptions},
				MaxAge:         300,
			}))
			r.Options(prefix+"{key}", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
		}
		r.Get(prefix+"{key}", func(w http.ResponseWriter, r *http.Request) {
			key := chi.URLParam(r, "key")
			state, err := lookup(r.Context(), key)
			if errors.Is(err, cache.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			if err != nil {
				s.Logger.Error().Err(err).Str("key", key).Msg("State lookup failed.")
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(state); err != nil {
				s.Logger.Error().Err(err).Str("key", key).Msg("Failed to encode state response.")
			}
		})
	})
}
