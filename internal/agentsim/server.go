// Package agentsim is a canned scan agent for demos and local development.
// It serves the same /api/v1 contract a real agent does, from embedded
// fixture data, so portscout can run without any hardware on the network.
package agentsim

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/portscout/portscout/internal/logging"
	"github.com/portscout/portscout/internal/models"
)

//go:embed fixtures
var fixtureFS embed.FS

type catalogPayload struct {
	AgentVersion string              `json:"agentVersion"`
	Columns      []models.GridColumn `json:"columns"`
}

type devicesPayload struct {
	Devices []models.Device `json:"devices"`
}

// Server serves the scan-agent HTTP contract from fixture data.
type Server struct {
	router  *chi.Mux
	logger  zerolog.Logger
	catalog catalogPayload
	devices devicesPayload

	mu     sync.Mutex
	server *http.Server
	ln     net.Listener
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for request and lifecycle logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a simulator backed by the embedded fixture inventory.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		logger: logging.Component("agentsim"),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.loadFixtures(); err != nil {
		return nil, err
	}

	s.router = chi.NewRouter()
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) loadFixtures() error {
	data, err := fixtureFS.ReadFile("fixtures/catalog.json")
	if err != nil {
		return fmt.Errorf("read catalog fixture: %w", err)
	}
	if err := json.Unmarshal(data, &s.catalog); err != nil {
		return fmt.Errorf("parse catalog fixture: %w", err)
	}

	data, err = fixtureFS.ReadFile("fixtures/devices.json")
	if err != nil {
		return fmt.Errorf("read devices fixture: %w", err)
	}
	if err := json.Unmarshal(data, &s.devices); err != nil {
		return fmt.Errorf("parse devices fixture: %w", err)
	}

	return nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)
		r.Get("/devices", s.handleDevices)
	})
	s.router.Get("/healthz", s.handleHealth)
}

// requestLogger logs one line per served request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request served")
	})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.catalog)
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.devices)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{
		"status":       "ok",
		"agentVersion": s.catalog.AgentVersion,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers are already sent; nothing to do but log.
		s.logger.Error().Err(err).Msg("response encode failed")
	}
}

// Start begins serving on addr. Pass a ":0" port to let the kernel pick
// one; Addr reports the bound address either way.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ln != nil {
		return errors.New("agent simulator already running")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	s.ln = ln
	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().
		Str("addr", ln.Addr().String()).
		Str("agent_version", s.catalog.AgentVersion).
		Int("devices", len(s.devices.Devices)).
		Msg("agent simulator listening")

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("agent simulator stopped unexpectedly")
		}
	}(s.server)

	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// BaseURL returns the URL clients should point at, or "" before Start.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return ""
	}
	return "http://" + addr
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.ln = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.logger.Info().Msg("agent simulator stopping")
	return srv.Shutdown(ctx)
}

// Router returns the underlying router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}
