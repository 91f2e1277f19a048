package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Auth modes.
const (
	AuthJWT   = "jwt"
	AuthBasic = "basic"
	AuthNone  = "none"
)

// Config holds runtime settings of a cluster connection.
type Config struct {
	Endpoints          []string      `env:"ENDPOINTS" envSeparator:","`
	Database           string        `env:"DATABASE"`
	Username           string        `env:"USERNAME"`
	Password           string        `env:"PASSWORD"`
	AuthMode           string        `env:"AUTH_MODE"`
	Strategy           string        `env:"STRATEGY"`
	LogLevel           string        `env:"LOG_LEVEL"`
	LogFormat          string        `env:"LOG_FORMAT"`
	MaxRetries         int           `env:"MAX_RETRIES"`
	MaxConflictRetries int           `env:"MAX_CONFLICT_RETRIES"`
	RequestTimeout     time.Duration `env:"REQUEST_TIMEOUT"`
	RefreshThreshold   time.Duration `env:"REFRESH_THRESHOLD"`
	CacheCapacity      int           `env:"CACHE_CAPACITY"`
	BatchSize          int           `env:"BATCH_SIZE"`
	MetricsAddr        string        `env:"METRICS_ADDR"`
}

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "DOCDB_"

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Endpoints = []string{"http://127.0.0.1:8529"}
	c.Database = "_system"
	c.Username = "root"
	c.AuthMode = AuthJWT
	c.Strategy = "round-robin"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.MaxRetries = 3
	c.MaxConflictRetries = 5
	c.RequestTimeout = 30 * time.Second
	c.RefreshThreshold = 12 * time.Hour
	c.CacheCapacity = 1000
	c.BatchSize = 100
}

// Validate reports settings no connection can be built from.
func (c *Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("config: no endpoints")
	}
	switch c.AuthMode {
	case AuthJWT, AuthBasic, AuthNone:
	default:
		return fmt.Errorf("config: unknown auth mode %q", c.AuthMode)
	}
	if c.CacheCapacity < 1 {
		return fmt.Errorf("config: cache capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("config: max retries must not be negative, got %d", c.MaxRetries)
	}
	return nil
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then DOCDB_* environment variables, then command-line flags.
// Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	return load(args, nil)
}

// load reads variables from environ, or from the process environment when
// environ is nil.
func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.Endpoints = splitList(cfg.Endpoints)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config, environ map[string]string) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix, Environment: environ}); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// splitList flattens comma-separated items and drops blanks.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		for _, s := range strings.Split(it, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Args returns the process arguments without the program name.
func Args() []string {
	if len(os.Args) < 2 {
		return nil
	}
	return os.Args[1:]
}
