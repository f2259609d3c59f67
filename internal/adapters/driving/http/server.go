package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	_ "github.com/saanviravikiran-cyber/linkedin-backend/docs" // registers the API document served at /swagger/doc.json
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/domain"
	"github.com/saanviravikiran-cyber/linkedin-backend/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     chi.Router
	cfg        Config
	logger     *slog.Logger

	// Services
	authService     driving.AuthService
	oauthService    driving.OAuthService
	publishService  driving.PublishService
	draftService    driving.DraftService
	identityService driving.IdentityService

	// Infrastructure
	checks         map[string]Pinger
	metricsHandler http.Handler

	callbackLimiter *RateLimiter
	apiLimiter      *RateLimiter
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            int
	Version         string
	ShutdownTimeout time.Duration

	// CallbackRate limits the public callback per client IP.
	CallbackRate  rate.Limit
	CallbackBurst int

	// APIRate limits authenticated routes per caller subject.
	APIRate  rate.Limit
	APIBurst int
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		Version:         "dev",
		ShutdownTimeout: 15 * time.Second,
		CallbackRate:    5,
		CallbackBurst:   10,
		APIRate:         20,
		APIBurst:        40,
	}
}

// Services groups the driving ports the server exposes.
type Services struct {
	Auth       driving.AuthService
	OAuth      driving.OAuthService
	Publish    driving.PublishService
	Drafts     driving.DraftService
	Identities driving.IdentityService
}

// Infra groups health checks and the metrics endpoint. Both are optional.
type Infra struct {
	// Checks are pinged by /ready, keyed by component name.
	Checks  map[string]Pinger
	Metrics http.Handler
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, svc Services, infra Infra, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	s := &Server{
		router:          chi.NewRouter(),
		cfg:             cfg,
		logger:          logger,
		authService:     svc.Auth,
		oauthService:    svc.OAuth,
		publishService:  svc.Publish,
		draftService:    svc.Drafts,
		identityService: svc.Identities,
		checks:          infra.Checks,
		metricsHandler:  infra.Metrics,
		callbackLimiter: NewRateLimiter(cfg.CallbackRate, cfg.CallbackBurst, ClientIP, logger),
		apiLimiter:      NewRateLimiter(cfg.APIRate, cfg.APIBurst, CallerSubject, logger),
	}

	s.httpServer = &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := s.router
	authMiddleware := NewAuthMiddleware(s.authService)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(NewRecoveryMiddleware(s.logger).Handler)
	r.Use(NewLoggingMiddleware(s.logger).Handler)

	// Health endpoints (no auth)
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Get("/version", s.handleVersion)
	r.Get("/swagger/doc.json", s.handleSwaggerDoc)
	if s.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", s.metricsHandler)
	}

	// Callback is public - receives redirects from LinkedIn
	r.Group(func(r chi.Router) {
		r.Use(s.callbackLimiter.Middleware)
		r.Get("/api/v1/oauth/callback", s.handleOAuthCallback)
		r.Get("/callback", s.handleOAuthCallback)
	})

	// Backend service endpoints
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Use(s.apiLimiter.Middleware)

		r.With(RequireScope(domain.ScopeOAuth)).Post("/api/v1/oauth/authorize", s.handleOAuthAuthorize)
		r.With(RequireScope(domain.ScopeOAuth)).Post("/pkce/store", s.handleStorePKCE)

		r.With(RequireScope(domain.ScopePublish)).Post("/api/v1/posts", s.handlePublish)
		r.With(RequireScope(domain.ScopePublish)).Post("/post", s.handlePostQuery)

		r.Route("/api/v1/identities/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetIdentity)
			r.With(RequireScope(domain.ScopeDrafts)).Get("/drafts", s.handleListDrafts)
			r.With(RequireScope(domain.ScopeDrafts)).Post("/drafts", s.handleAddDraft)
		})
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
