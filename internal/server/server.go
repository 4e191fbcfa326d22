package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/information-sharing-networks/jws-demo/internal/config"
	"github.com/information-sharing-networks/jws-demo/internal/jws"
	"github.com/information-sharing-networks/jws-demo/internal/keys"
	"github.com/information-sharing-networks/jws-demo/internal/server/middleware"
)

type Server struct {
	pool     *pgxpool.Pool
	store    KeyStore
	registry *jws.Registry
	remote   RemoteKeys
	config   *config.ServerEnvironment
	logger   *slog.Logger
	router   *chi.Mux
}

func NewServer(
	ctx context.Context,
	pool *pgxpool.Pool,
	store KeyStore,
	registry *jws.Registry,
	cfg *config.ServerEnvironment,
	logger *slog.Logger,
) (*Server, error) {
	server := &Server{
		pool:     pool,
		store:    store,
		registry: registry,
		config:   cfg,
		logger:   logger,
		router:   chi.NewRouter(),
	}

	if cfg.JWKSCacheEnabled && len(cfg.JWKSAllowedEndpoints) > 0 {
		remote, err := keys.NewRemoteKeySet(ctx, cfg.JWKSAllowedEndpoints, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize remote JWKS cache: %w", err)
		}
		server.remote = remote
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(chimiddleware.Timeout(60 * time.Second))
	s.router.Use(middleware.RequestLogging(s.logger))
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(middleware.RequestSizeLimit(s.config.MaxRequestBodySize))
}

func (s *Server) registerRoutes() {
	s.router.Get("/health/live", HandleHealth)
	s.router.Get("/health/ready", HandleReadiness(s.store))
	s.router.Get("/version", HandleVersion())

	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/sign", HandleSign(s.store, s.registry))
		r.Post("/verify", HandleVerify(s.store, s.registry, s.remote))
	})

	// key management - unprotected, for dev/test use
	s.router.Route("/admin/keys", func(r chi.Router) {
		r.Post("/", HandleCreateKey(s.store))
		r.Delete("/{kid}", HandleDeactivateKey(s.store))
	})

	s.router.Get("/.well-known/jwks.json", HandleJWKS(s.store))
}

// Router exposes the configured route tree (used by httptest in handler tests).
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:         serverAddr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	err := httpServer.Shutdown(shutdownCtx)
	if err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}

func (s *Server) DatabaseShutdown() {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("database connection closed")
	}
}
