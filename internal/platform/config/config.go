// Package config loads and validates service configuration with koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Server defaults.
const (
	DefaultServerPort = 8080

	// DefaultMaxRequestSize caps request bodies at 1MB.
	DefaultMaxRequestSize = 1 << 20
)

// Sync defaults.
const (
	// DefaultSyncBatchSize is how many quotes a cycle fetches from the
	// remote source.
	DefaultSyncBatchSize = 10

	// DefaultRemoteUserID is attached to quotes published upstream.
	DefaultRemoteUserID = 1
)

// Client defaults. A failed merge cycle waits for the next tick instead of
// retrying, so the sync client makes a single attempt unless configured
// otherwise.
const (
	DefaultClientRetryMaxAttempts     = 1
	DefaultClientRetryMultiplier      = 2.0
	DefaultClientRetryJitterFactor    = 0.25
	DefaultClientCircuitMaxFailures   = 5
	DefaultClientCircuitHalfOpenLimit = 3

	DefaultTransportMaxIdleConns        = 100
	DefaultTransportMaxIdleConnsPerHost = 10
)

// Log rotation defaults.
const (
	DefaultLogFileMaxSizeMB  = 100
	DefaultLogFileMaxBackups = 3
	DefaultLogFileMaxAgeDays = 28
)

// Config is everything the service reads at startup, grouped by concern.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
	Sync      SyncConfig      `koanf:"sync"      validate:"required"`
	Client    ClientConfig    `koanf:"client"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Auth      AuthConfig      `koanf:"auth"`
	Flags     map[string]any  `koanf:"flags"`
}

// AppConfig identifies the service instance.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig tunes the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"             validate:"required"`
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig selects level, output format, and optional file rotation.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig mirrors the lumberjack rotation knobs.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig switches tracing on and points it at a collector.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// AuthConfig contains authentication settings. The gateway validates
// tokens; this service only reads the claims headers it forwards.
type AuthConfig struct {
	Enabled       bool   `koanf:"enabled"`
	SubjectHeader string `koanf:"subject_header"`
	RolesHeader   string `koanf:"roles_header"`
	ScopesHeader  string `koanf:"scopes_header"`
	WriteScope    string `koanf:"write_scope" validate:"required_if=Enabled true"`
}

// ClientConfig tunes the HTTP client that talks to the remote source.
type ClientConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=100ms"`
	Retry          RetryConfig          `koanf:"retry"           validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
	Transport      TransportConfig      `koanf:"transport"       validate:"required"`
}

// RetryConfig spaces out request attempts. MaxAttempts of 1 means a single
// attempt with no retries.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// CircuitBreakerConfig tunes the breaker guarding the remote source.
type CircuitBreakerConfig struct {
	MaxFailures   int           `koanf:"max_failures"    validate:"required,min=1"`
	Timeout       time.Duration `koanf:"timeout"         validate:"required,min=1s"`
	HalfOpenLimit int           `koanf:"half_open_limit" validate:"required,min=1"`
}

// TransportConfig tunes the connection pool.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// StorageConfig selects and configures the snapshot store.
type StorageConfig struct {
	Driver string            `koanf:"driver" validate:"required,oneof=sqlite file memory"`
	SQLite SQLiteStoreConfig `koanf:"sqlite"`
	File   FileStoreConfig   `koanf:"file"`
}

// SQLiteStoreConfig contains settings for the sqlite snapshot store.
type SQLiteStoreConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// FileStoreConfig contains settings for the JSON file snapshot store.
// Path is the directory that holds the state files.
type FileStoreConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// SyncConfig contains the merge cycle scheduling and remote settings.
type SyncConfig struct {
	Enabled      bool          `koanf:"enabled"`
	Interval     time.Duration `koanf:"interval"   validate:"required,min=1s"`
	Timeout      time.Duration `koanf:"timeout"    validate:"required,min=1s"`
	Immediate    bool          `koanf:"immediate"`
	BatchSize    int           `koanf:"batch_size" validate:"required,min=1,max=100"`
	PublishOnAdd bool          `koanf:"publish_on_add"`
	Remote       RemoteConfig  `koanf:"remote"     validate:"required"`
}

// RemoteConfig contains the upstream placeholder API settings.
type RemoteConfig struct {
	BaseURL  string `koanf:"base_url" validate:"required,url"`
	Name     string `koanf:"name"     validate:"required"`
	Category string `koanf:"category" validate:"required"`
	UserID   int    `koanf:"user_id"  validate:"required,min=1"`
}

// defaults holds the baseline every deployment starts from; files and env
// vars override it key by key.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quotesync",
		"app.version":     "dev",
		"app.environment": "local",

		"server.host":             "0.0.0.0",
		"server.port":             DefaultServerPort,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.format":           "json",
		"log.level":            "info",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quotesync.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quotesync",
		"telemetry.sampling_rate": 1.0,

		"auth.enabled":        false,
		"auth.subject_header": "X-User-ID",
		"auth.roles_header":   "X-User-Roles",
		"auth.scopes_header":  "X-User-Scopes",
		"auth.write_scope":    "quotes:write",

		"client.timeout":                           "30s",
		"client.circuit_breaker.max_failures":      DefaultClientCircuitMaxFailures,
		"client.circuit_breaker.timeout":           "30s",
		"client.circuit_breaker.half_open_limit":   DefaultClientCircuitHalfOpenLimit,
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"storage.driver":      "sqlite",
		"storage.sqlite.path": "./data/quotesync.db",
		"storage.file.path":   "./data",

		"sync.enabled":         true,
		"sync.interval":        "60s",
		"sync.timeout":         "30s",
		"sync.immediate":       false,
		"sync.batch_size":      DefaultSyncBatchSize,
		"sync.publish_on_add":  true,
		"sync.remote.base_url": "https://jsonplaceholder.typicode.com",
		"sync.remote.name":     "placeholder-api",
		"sync.remote.category": "Server",
		"sync.remote.user_id":  DefaultRemoteUserID,
	}
}

// Load assembles the configuration for one profile. Later sources override
// earlier ones: defaults, then configs/base.yaml, then
// configs/{profile}.yaml, then APP_-prefixed environment variables.
func Load(profile string) (*Config, error) {
	k := koanf.New(".")

	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	err = loadOptionalFile(k, "configs/base.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	if profile != "" {
		err = loadOptionalFile(k, fmt.Sprintf("configs/%s.yaml", profile))
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	err = k.Load(env.Provider("APP_", ".", envKeyToPath), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeyToPath turns APP_SERVER_PORT into server.port.
func envKeyToPath(s string) string {
	return strings.ReplaceAll(
		strings.ToLower(strings.TrimPrefix(s, "APP_")),
		"_",
		".",
	)
}

// loadOptionalFile merges a YAML file into k. A missing file is not an
// error; unreadable or unparsable ones are.
func loadOptionalFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
