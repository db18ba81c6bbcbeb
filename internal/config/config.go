// Package config provides environment configuration for the shoplist server and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Default configuration values.
const (
	DefaultServerPort      = 8080
	DefaultLogLevel        = "info"
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMetricsEnabled  = true
	DefaultAuthMode        = "none"
	DefaultStoreDriver     = "memory"
	DefaultSQLitePath      = "shoplist.db"
	DefaultLoginRateLimit  = 10
	DefaultBackendURL      = "http://localhost:8080"
	DefaultStatePath       = "shoplist-state.db"
	DefaultClientTimeout   = 10 * time.Second
)

// Environment variable names.
const (
	EnvServerPort      = "APP_SERVER_PORT"
	EnvLogLevel        = "APP_LOG_LEVEL"
	EnvShutdownTimeout = "APP_SHUTDOWN_TIMEOUT"
	EnvMetricsEnabled  = "APP_METRICS_ENABLED"
	EnvAuthMode        = "APP_AUTH_MODE"
	EnvAPIKeys         = "APP_API_KEYS" //nolint:gosec // env var name, not a credential
	EnvStoreDriver     = "APP_STORE_DRIVER"
	EnvSQLitePath      = "APP_SQLITE_PATH"
	EnvSeedFile        = "APP_SEED_FILE"
	EnvLoginRateLimit  = "APP_LOGIN_RATE_LIMIT"
	EnvBackendURL      = "APP_BACKEND_URL"
	EnvAPIKey          = "APP_API_KEY" //nolint:gosec // env var name, not a credential
	EnvStatePath       = "APP_STATE_PATH"
	EnvClientTimeout   = "APP_CLIENT_TIMEOUT"
)

// Store drivers.
const (
	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

// Config holds the server configuration.
type Config struct {
	// Server settings.
	ServerPort      int
	LogLevel        string
	ShutdownTimeout time.Duration
	MetricsEnabled  bool

	// Authentication mode: none, basic, apikey, multi.
	AuthMode string

	// API key settings (format: "key1:name1,key2:name2").
	APIKeys string

	// Storage settings.
	StoreDriver string
	SQLitePath  string
	SeedFile    string

	// Login attempts allowed per client IP per minute (0 = unlimited).
	LoginRateLimit int
}

// ClientConfig holds the CLI configuration.
type ClientConfig struct {
	BackendURL string
	APIKey     string
	StatePath  string
	Timeout    time.Duration
	LogLevel   string
}

// Validation errors.
var (
	ErrInvalidServerPort      = errors.New("server port must be between 1 and 65535")
	ErrInvalidLogLevel        = errors.New("log level must be one of: debug, info, warn, error")
	ErrInvalidShutdownTimeout = errors.New("shutdown timeout must be positive")
	ErrInvalidAuthMode        = errors.New("auth mode must be one of: none, basic, apikey, multi")
	ErrInvalidAPIKeyConfig    = errors.New("API keys must be set when auth mode is apikey")
	ErrInvalidStoreDriver     = errors.New("store driver must be one of: memory, sqlite")
	ErrInvalidSQLitePath      = errors.New("sqlite path must be set when store driver is sqlite")
	ErrInvalidLoginRateLimit  = errors.New("login rate limit cannot be negative")
	ErrInvalidBackendURL      = errors.New("backend URL cannot be empty")
	ErrInvalidStatePath       = errors.New("state path cannot be empty")
	ErrInvalidClientTimeout   = errors.New("client timeout must be positive")
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Load reads the server configuration from environment variables with defaults.
// A .env file in the working directory is read first; real environment
// variables take priority over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:      DefaultServerPort,
		LogLevel:        DefaultLogLevel,
		ShutdownTimeout: DefaultShutdownTimeout,
		MetricsEnabled:  DefaultMetricsEnabled,
		AuthMode:        DefaultAuthMode,
		StoreDriver:     DefaultStoreDriver,
		SQLitePath:      DefaultSQLitePath,
		LoginRateLimit:  DefaultLoginRateLimit,
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("loading config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromEnv loads configuration values from environment variables.
func (c *Config) loadFromEnv() error {
	if err := c.loadServerEnv(); err != nil {
		return err
	}

	c.loadAuthEnv()

	return c.loadStoreEnv()
}

// loadServerEnv loads server-related environment variables.
func (c *Config) loadServerEnv() error {
	if val := os.Getenv(EnvServerPort); val != "" {
		port, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvServerPort, err)
		}
		c.ServerPort = port
	}

	if val := os.Getenv(EnvLogLevel); val != "" {
		c.LogLevel = val
	}

	if val := os.Getenv(EnvShutdownTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvShutdownTimeout, err)
		}
		c.ShutdownTimeout = timeout
	}

	if val := os.Getenv(EnvMetricsEnabled); val != "" {
		enabled, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMetricsEnabled, err)
		}
		c.MetricsEnabled = enabled
	}

	if val := os.Getenv(EnvLoginRateLimit); val != "" {
		limit, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvLoginRateLimit, err)
		}
		c.LoginRateLimit = limit
	}

	return nil
}

// loadAuthEnv loads authentication environment variables.
func (c *Config) loadAuthEnv() {
	if val := os.Getenv(EnvAuthMode); val != "" {
		c.AuthMode = val
	}

	if val := os.Getenv(EnvAPIKeys); val != "" {
		c.APIKeys = val
	}
}

// loadStoreEnv loads storage environment variables.
func (c *Config) loadStoreEnv() error {
	if val := os.Getenv(EnvStoreDriver); val != "" {
		c.StoreDriver = val
	}

	if val := os.Getenv(EnvSQLitePath); val != "" {
		c.SQLitePath = val
	}

	if val := os.Getenv(EnvSeedFile); val != "" {
		if _, err := os.Stat(val); err != nil {
			return fmt.Errorf("checking %s: %w", EnvSeedFile, err)
		}
		c.SeedFile = val
	}

	return nil
}

// Validate checks if the configuration values are valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateAuth(); err != nil {
		return err
	}

	return c.validateStore()
}

// validateServer validates server-related configuration.
func (c *Config) validateServer() error {
	if c.ServerPort < 1 || c.ServerPort > 65535 {
		return ErrInvalidServerPort
	}

	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}

	if c.ShutdownTimeout <= 0 {
		return ErrInvalidShutdownTimeout
	}

	if c.LoginRateLimit < 0 {
		return ErrInvalidLoginRateLimit
	}

	return nil
}

// validateAuth validates authentication configuration.
func (c *Config) validateAuth() error {
	switch c.authModeOrDefault() {
	case "none", "basic", "multi":
		return nil
	case "apikey":
		if c.APIKeys == "" {
			return ErrInvalidAPIKeyConfig
		}
		return nil
	default:
		return ErrInvalidAuthMode
	}
}

// validateStore validates storage configuration.
func (c *Config) validateStore() error {
	switch c.StoreDriver {
	case StoreDriverMemory:
		return nil
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return ErrInvalidSQLitePath
		}
		return nil
	default:
		return ErrInvalidStoreDriver
	}
}

// authModeOrDefault returns the auth mode, defaulting to "none" if empty.
func (c *Config) authModeOrDefault() string {
	if c.AuthMode == "" {
		return DefaultAuthMode
	}
	return c.AuthMode
}

// AuthEnabled reports whether requests must be authenticated.
func (c *Config) AuthEnabled() bool {
	return c.authModeOrDefault() != "none"
}

// Address returns the server address in host:port format.
func (c *Config) Address() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// LoadClient reads the CLI configuration from environment variables with defaults.
func LoadClient() (*ClientConfig, error) {
	_ = godotenv.Load()

	cfg := &ClientConfig{
		BackendURL: DefaultBackendURL,
		StatePath:  DefaultStatePath,
		Timeout:    DefaultClientTimeout,
		LogLevel:   "warn",
	}

	if val := os.Getenv(EnvBackendURL); val != "" {
		cfg.BackendURL = val
	}
	if val := os.Getenv(EnvAPIKey); val != "" {
		cfg.APIKey = val
	}
	if val := os.Getenv(EnvStatePath); val != "" {
		cfg.StatePath = val
	}
	if val := os.Getenv(EnvLogLevel); val != "" {
		cfg.LogLevel = val
	}
	if val := os.Getenv(EnvClientTimeout); val != "" {
		timeout, err := time.ParseDuration(val)
		if err != nil {
			return nil, fmt.Errorf("loading client config: parsing %s: %w", EnvClientTimeout, err)
		}
		cfg.Timeout = timeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating client config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the client configuration values are valid.
func (c *ClientConfig) Validate() error {
	if c.BackendURL == "" {
		return ErrInvalidBackendURL
	}
	if c.StatePath == "" {
		return ErrInvalidStatePath
	}
	if c.Timeout <= 0 {
		return ErrInvalidClientTimeout
	}
	if !validLogLevels[c.LogLevel] {
		return ErrInvalidLogLevel
	}
	return nil
}
