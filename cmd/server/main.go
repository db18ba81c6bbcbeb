// Package main is the entry point for the shoplist backend server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/shoplist/internal/auth"
	"github.com/vyrodovalexey/shoplist/internal/config"
	"github.com/vyrodovalexey/shoplist/internal/seed"
	"github.com/vyrodovalexey/shoplist/internal/server"
	"github.com/vyrodovalexey/shoplist/internal/store"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// Use a basic logger for startup errors
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to load configuration", zap.Error(err))
		return 1
	}

	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		basicLogger, _ := zap.NewProduction()
		basicLogger.Error("failed to initialize logger", zap.Error(err))
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("configuration loaded",
		zap.Int("server_port", cfg.ServerPort),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("shutdown_timeout", cfg.ShutdownTimeout),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
		zap.String("auth_mode", cfg.AuthMode),
		zap.String("store_driver", cfg.StoreDriver),
		zap.Int("login_rate_limit", cfg.LoginRateLimit),
	)

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("failed to open store", zap.Error(err))
		return 1
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Warn("failed to close store", zap.Error(err))
		}
	}()

	if err := seedStore(context.Background(), cfg, st, logger); err != nil {
		logger.Error("failed to seed store", zap.Error(err))
		return 1
	}

	authenticator, err := createAuthenticator(cfg, st, logger)
	if err != nil {
		logger.Error("failed to create authenticator", zap.Error(err))
		return 1
	}

	srv, err := server.New(cfg, logger, st, authenticator)
	if err != nil {
		logger.Error("failed to create server", zap.Error(err))
		return 1
	}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for shutdown signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
		return 1
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", zap.Error(err))
			return 1
		}
	}

	logger.Info("server stopped")
	return 0
}

// initLogger initializes a zap logger with the specified log level.
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	zapConfig := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zapConfig.Build()
}

// openStore opens the store selected by the configured driver.
func openStore(cfg *config.Config, logger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory, "":
		logger.Info("using in-memory store")
		return store.NewMemoryStore(), nil
	case config.StoreDriverSQLite:
		logger.Info("using sqlite store", zap.String("path", cfg.SQLitePath))
		st, err := store.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.StoreDriver)
	}
}

// seedStore makes sure the category catalog exists and loads the optional fixture file.
func seedStore(ctx context.Context, cfg *config.Config, st store.Store, logger *zap.Logger) error {
	n, err := seed.EnsureCategories(ctx, st, logger)
	if err != nil {
		return fmt.Errorf("ensuring categories: %w", err)
	}
	if n > 0 {
		logger.Info("default categories created", zap.Int("count", n))
	}

	if cfg.SeedFile == "" {
		return nil
	}

	fx, err := seed.Load(cfg.SeedFile)
	if err != nil {
		return err
	}

	result, err := seed.Apply(ctx, st, fx, logger)
	if err != nil {
		return fmt.Errorf("applying seed file: %w", err)
	}

	logger.Info("seed file applied",
		zap.String("path", cfg.SeedFile),
		zap.Int("categories", result.Categories),
		zap.Int("users", result.Users),
		zap.Int("lists", result.Lists),
		zap.Int("items", result.Items),
	)
	return nil
}

// createAuthenticator creates an authenticator based on the config auth mode.
// Basic auth checks credentials against the registered users in st.
func createAuthenticator(
	cfg *config.Config,
	st store.Store,
	logger *zap.Logger,
) (auth.Authenticator, error) {
	switch cfg.AuthMode {
	case "none", "":
		logger.Info("authentication disabled")
		return nil, nil
	case "basic":
		logger.Info("authentication mode: basic auth")
		return auth.NewBasicAuthenticator(st)
	case "apikey":
		logger.Info("authentication mode: API key")
		return auth.NewAPIKeyAuthenticator(cfg.APIKeys)
	case "multi":
		logger.Info("authentication mode: multi")
		return createMultiAuthenticator(cfg, st, logger)
	default:
		return nil, fmt.Errorf("unknown auth mode: %s", cfg.AuthMode)
	}
}

// createMultiAuthenticator accepts registered users and, when configured, API keys.
func createMultiAuthenticator(
	cfg *config.Config,
	st store.Store,
	logger *zap.Logger,
) (auth.Authenticator, error) {
	ba, err := auth.NewBasicAuthenticator(st)
	if err != nil {
		return nil, fmt.Errorf("creating basic authenticator: %w", err)
	}
	authenticators := []auth.Authenticator{ba}
	logger.Info("multi-auth: basic auth enabled")

	if cfg.APIKeys != "" {
		ak, err := auth.NewAPIKeyAuthenticator(cfg.APIKeys)
		if err != nil {
			return nil, fmt.Errorf("creating API key authenticator: %w", err)
		}
		authenticators = append(authenticators, ak)
		logger.Info("multi-auth: API key auth enabled")
	}

	return auth.NewMultiAuthenticator(authenticators...), nil
}
