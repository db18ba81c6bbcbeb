// Package server assembles the shoplist HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/shoplist/internal/auth"
	"github.com/vyrodovalexey/shoplist/internal/config"
	"github.com/vyrodovalexey/shoplist/internal/handler"
	"github.com/vyrodovalexey/shoplist/internal/middleware"
	"github.com/vyrodovalexey/shoplist/internal/store"
)

const (
	loginPath          = "/auth/login"
	loginRatePeriod    = time.Minute
	limiterCleanupTick = 5 * time.Minute
)

// Server represents the HTTP server.
type Server struct {
	httpServer    *http.Server
	router        *mux.Router
	config        *config.Config
	logger        *zap.Logger
	wsHandler     *handler.WebSocketHandler
	authenticator auth.Authenticator
	limiter       *middleware.RateLimiter
	stopCleanup   context.CancelFunc
}

// New creates a new Server instance. authenticator is only consulted when
// the configured auth mode is not "none"; it may be nil otherwise.
func New(cfg *config.Config, logger *zap.Logger, st store.Store, authenticator auth.Authenticator) (*Server, error) {
	if cfg.AuthEnabled() && authenticator == nil {
		return nil, fmt.Errorf("auth mode %q requires an authenticator", cfg.AuthMode)
	}

	s := &Server{
		router:        mux.NewRouter(),
		config:        cfg,
		logger:        logger,
		authenticator: authenticator,
		limiter:       middleware.NewRateLimiter(),
	}

	s.setupMiddleware()
	if err := s.setupRoutes(st); err != nil {
		return nil, err
	}
	s.setupHTTPServer()
	s.startLimiterCleanup()

	return s, nil
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware() {
	allowedOrigins := []string{"*"}
	allowedMethods := []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowedHeaders := []string{
		"Content-Type",
		"Authorization",
		"If-Match",
		auth.APIKeyHeader,
		middleware.RequestIDHeader,
	}

	// Apply middleware in order (first applied = outermost)
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.CORS(allowedOrigins, allowedMethods, allowedHeaders)))

	if s.config.AuthEnabled() {
		s.router.Use(mux.MiddlewareFunc(middleware.Auth(s.authenticator, s.logger)))
	}

	s.router.Use(mux.MiddlewareFunc(onlyPath(loginPath,
		middleware.RateLimit(s.limiter, middleware.RealIP, s.config.LoginRateLimit, loginRatePeriod))))
	s.router.Use(mux.MiddlewareFunc(middleware.Compress()))
}

// onlyPath applies mw to requests for path and passes everything else through.
func onlyPath(path string, mw middleware.Middleware) middleware.Middleware {
	return func(next http.Handler) http.Handler {
		wrapped := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == path {
				wrapped.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(st store.Store) error {
	// Change feed first: the REST handler broadcasts every write to it.
	s.wsHandler = handler.NewWebSocketHandler(s.logger)
	s.wsHandler.RegisterRoutes(s.router)

	verifier, err := auth.NewBasicAuthenticator(st)
	if err != nil {
		return fmt.Errorf("creating login verifier: %w", err)
	}

	restHandler := handler.NewRESTHandler(st, verifier, s.wsHandler, s.logger)
	restHandler.RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	return nil
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}
}

func (s *Server) startLimiterCleanup() {
	ctx, cancel := context.WithCancel(context.Background())
	s.stopCleanup = cancel

	go func() {
		ticker := time.NewTicker(limiterCleanupTick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.limiter.Cleanup()
			}
		}
	}()
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.String("auth_mode", s.config.AuthMode),
		zap.String("store_driver", s.config.StoreDriver),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	s.stopCleanup()

	// Close all WebSocket connections first
	if s.wsHandler != nil {
		s.wsHandler.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router for testing purposes.
func (s *Server) Router() *mux.Router {
	return s.router
}

// WebSocket returns the change feed handler.
func (s *Server) WebSocket() *handler.WebSocketHandler {
	return s.wsHandler
}
