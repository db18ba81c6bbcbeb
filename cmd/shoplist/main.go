// Package main is the shoplist command line client.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vyrodovalexey/shoplist/internal/client"
	"github.com/vyrodovalexey/shoplist/internal/config"
	"github.com/vyrodovalexey/shoplist/internal/history"
	"github.com/vyrodovalexey/shoplist/internal/localstore"
	"github.com/vyrodovalexey/shoplist/internal/session"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	logger, err := initLogger(cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	a, err := newApp(cfg, logger, stdout, stderr)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.registry().Execute(ctx, args); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// initLogger builds a console logger writing to w at the given level.
func initLogger(level string, w io.Writer) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level: %w", err)
	}

	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), zapLevel)

	return zap.New(core), nil
}

// app holds the collaborators shared by every command.
type app struct {
	api      *client.Client
	state    *localstore.Store
	sessions *session.Manager
	history  *history.Log
	commands *CommandRegistry
	logger   *zap.Logger
	stdout   io.Writer
	stderr   io.Writer
}

func newApp(cfg *config.ClientConfig, logger *zap.Logger, stdout, stderr io.Writer) (*app, error) {
	api, err := client.New(client.Config{
		BaseURL: cfg.BackendURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	state, err := localstore.Open(cfg.StatePath)
	if err != nil {
		return nil, err
	}

	return &app{
		api:      api,
		state:    state,
		sessions: session.NewManager(state),
		history:  history.NewLog(state),
		logger:   logger,
		stdout:   stdout,
		stderr:   stderr,
	}, nil
}

func (a *app) close() {
	if err := a.state.Close(); err != nil {
		a.logger.Warn("failed to close local state", zap.Error(err))
	}
}

// currentUser returns the logged-in session.
func (a *app) currentUser(ctx context.Context) (session.Info, error) {
	info, err := a.sessions.Load(ctx)
	if errors.Is(err, session.ErrNotLoggedIn) {
		return session.Info{}, errors.New("not logged in: run 'shoplist login' first")
	}
	return info, err
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.stdout, format, args...)
}
