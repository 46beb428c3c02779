package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-envconfig"

	"github.com/celerix-dev/celerix-records/internal/engine"
	"github.com/celerix-dev/celerix-records/internal/vault"
)

// Config holds runtime configuration for the records daemon.
type Config struct {
	Addr    string `env:"CELERIX_HTTP_ADDR,default=:7002"`
	Backend string `env:"CELERIX_BACKEND,default=file"`
	DataDir string `env:"CELERIX_DATA_DIR,default=./data"`
	// MasterKey is 64 hex characters; when set the embedded store encrypts its files.
	MasterKey string `env:"CELERIX_MASTER_KEY"`

	RedisAddr     string `env:"CELERIX_REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"CELERIX_REDIS_PASSWORD"`
	RedisDB       int    `env:"CELERIX_REDIS_DB,default=0"`
	DBDSN         string `env:"CELERIX_DB_DSN"`

	RequestTimeout time.Duration `env:"CELERIX_REQUEST_TIMEOUT,default=5s"`
	StrictCreate   bool          `env:"CELERIX_STRICT_CREATE,default=false"`
	TLS            bool          `env:"CELERIX_TLS,default=false"`
	TLSHosts       []string      `env:"CELERIX_TLS_HOSTS"`
	AllowedOrigins []string      `env:"CELERIX_CORS_ALLOWED_ORIGINS,default=*"`
	RateLimit      int           `env:"CELERIX_RATE_LIMIT,default=600"`

	LogLevel     string `env:"CELERIX_LOG_LEVEL,default=info"`
	LogFormat    string `env:"CELERIX_LOG_FORMAT,default=json"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads the configuration through l and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings each backend depends on.
func (c Config) Validate() error {
	var errs []error
	switch c.Backend {
	case engine.BackendFile, engine.BackendMemory:
	case engine.BackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("CELERIX_REDIS_ADDR is required for the redis backend"))
		}
	case engine.BackendPostgres:
		if c.DBDSN == "" {
			errs = append(errs, errors.New("CELERIX_DB_DSN is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("CELERIX_BACKEND: unknown backend %q", c.Backend))
	}
	if c.MasterKey != "" {
		if _, err := vault.ParseMasterKey(c.MasterKey); err != nil {
			errs = append(errs, fmt.Errorf("CELERIX_MASTER_KEY: %w", err))
		}
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("CELERIX_LOG_LEVEL: %w", err))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("CELERIX_LOG_FORMAT: want json or console, got %q", c.LogFormat))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("CELERIX_REQUEST_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// StoreOptions translates the configuration into engine.Open options.
func (c Config) StoreOptions() (engine.Options, error) {
	opts := engine.Options{
		Backend:       c.Backend,
		DataDir:       c.DataDir,
		RedisAddr:     c.RedisAddr,
		RedisPassword: c.RedisPassword,
		RedisDB:       c.RedisDB,
		PostgresDSN:   c.DBDSN,
	}
	if c.MasterKey != "" {
		key, err := vault.ParseMasterKey(c.MasterKey)
		if err != nil {
			return engine.Options{}, err
		}
		opts.MasterKey = key
	}
	return opts, nil
}
