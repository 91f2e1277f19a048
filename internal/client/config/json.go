package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/docdb/internal/flagx"
	"github.com/dmitrijs2005/docdb/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling, so durations
// can be written as "30s" or as integer nanoseconds.
type JsonConfig struct {
	Endpoints          []string       `json:"endpoints"`
	Database           string         `json:"database"`
	Username           string         `json:"username"`
	Password           string         `json:"password"`
	AuthMode           string         `json:"auth_mode"`
	Strategy           string         `json:"strategy"`
	LogLevel           string         `json:"log_level"`
	LogFormat          string         `json:"log_format"`
	MaxRetries         int            `json:"max_retries"`
	MaxConflictRetries int            `json:"max_conflict_retries"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	RefreshThreshold   timex.Duration `json:"refresh_threshold"`
	CacheCapacity      int            `json:"cache_capacity"`
	BatchSize          int            `json:"batch_size"`
	MetricsAddr        string         `json:"metrics_addr"`
}

// parseJSON overlays cfg with the file given by -c/-config. Keys missing
// from the file keep their current values.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	jc := JsonConfig{
		Endpoints:          cfg.Endpoints,
		Database:           cfg.Database,
		Username:           cfg.Username,
		Password:           cfg.Password,
		AuthMode:           cfg.AuthMode,
		Strategy:           cfg.Strategy,
		LogLevel:           cfg.LogLevel,
		LogFormat:          cfg.LogFormat,
		MaxRetries:         cfg.MaxRetries,
		MaxConflictRetries: cfg.MaxConflictRetries,
		RequestTimeout:     timex.Duration{Duration: cfg.RequestTimeout},
		RefreshThreshold:   timex.Duration{Duration: cfg.RefreshThreshold},
		CacheCapacity:      cfg.CacheCapacity,
		BatchSize:          cfg.BatchSize,
		MetricsAddr:        cfg.MetricsAddr,
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	cfg.Endpoints = jc.Endpoints
	cfg.Database = jc.Database
	cfg.Username = jc.Username
	cfg.Password = jc.Password
	cfg.AuthMode = jc.AuthMode
	cfg.Strategy = jc.Strategy
	cfg.LogLevel = jc.LogLevel
	cfg.LogFormat = jc.LogFormat
	cfg.MaxRetries = jc.MaxRetries
	cfg.MaxConflictRetries = jc.MaxConflictRetries
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.RefreshThreshold = jc.RefreshThreshold.Duration
	cfg.CacheCapacity = jc.CacheCapacity
	cfg.BatchSize = jc.BatchSize
	cfg.MetricsAddr = jc.MetricsAddr
	return nil
}
