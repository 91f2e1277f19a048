package config

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/docdb/internal/flagx"
)

var knownFlags = []string{
	"-e", "-d", "-u", "-p", "-m", "-s", "-r", "-k", "-t", "-l", "-f", "-cache", "-batch", "-metrics",
}

// parseFlags overlays cfg with command-line flags. Only the flags listed in
// knownFlags are looked at; everything else in args is left to other
// loaders.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("docdb", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	endpoints := fs.String("e", strings.Join(cfg.Endpoints, ","), "comma-separated coordinator URLs")
	fs.StringVar(&cfg.Database, "d", cfg.Database, "database name")
	fs.StringVar(&cfg.Username, "u", cfg.Username, "user name")
	fs.StringVar(&cfg.Password, "p", cfg.Password, "password")
	fs.StringVar(&cfg.AuthMode, "m", cfg.AuthMode, "auth mode: jwt, basic or none")
	fs.StringVar(&cfg.Strategy, "s", cfg.Strategy, "endpoint selection: round-robin or random")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "connection retries per request")
	fs.IntVar(&cfg.MaxConflictRetries, "k", cfg.MaxConflictRetries, "write conflict retries per request")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format: text, json or console")
	fs.IntVar(&cfg.CacheCapacity, "cache", cfg.CacheCapacity, "documents cached per collection")
	fs.IntVar(&cfg.BatchSize, "batch", cfg.BatchSize, "cursor batch size")
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "address serving Prometheus metrics, empty to disable")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("config: flags: %w", err)
	}
	cfg.Endpoints = []string{*endpoints}
	return nil
}
