package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/docdb/internal/client/auth"
	"github.com/dmitrijs2005/docdb/internal/client/config"
	"github.com/dmitrijs2005/docdb/internal/client/endpoint"
	"github.com/dmitrijs2005/docdb/internal/client/models"
	"github.com/dmitrijs2005/docdb/internal/client/session"
	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/dmitrijs2005/docdb/internal/metrics"
)

const defaultCacheCapacity = 1000

type Connection struct {
	exec          session.Executor
	provider      auth.Provider
	selector      endpoint.Selector
	log           logging.Logger
	metrics       *metrics.Metrics
	cacheCapacity int
	batchSize     int
}

type Option func(*Connection)

func WithLogger(l logging.Logger) Option {
	return func(c *Connection) { c.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Connection) { c.metrics = m }
}

// WithCacheCapacity sets the document cache size of every collection.
func WithCacheCapacity(n int) Option {
	return func(c *Connection) { c.cacheCapacity = n }
}

// WithBatchSize sets the batch size of queries that do not ask for one.
func WithBatchSize(n int) Option {
	return func(c *Connection) { c.batchSize = n }
}

func newConnection(exec session.Executor, opts []Option) *Connection {
	c := &Connection{
		exec:          exec,
		log:           logging.NewNop(),
		metrics:       metrics.NewUnregistered(),
		cacheCapacity: defaultCacheCapacity,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New wraps an existing executor, typically a *session.Session built by
// hand.
func New(exec session.Executor, opts ...Option) *Connection {
	return newConnection(exec, opts)
}

// NewConnection builds the selector, auth provider and session described by
// cfg. No request is sent until the first call.
func NewConnection(cfg *config.Config, opts ...Option) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = append([]Option{WithCacheCapacity(cfg.CacheCapacity), WithBatchSize(cfg.BatchSize)}, opts...)
	c := newConnection(nil, opts)

	sel, err := endpoint.New(cfg.Strategy, cfg.Endpoints)
	if err != nil {
		return nil, err
	}

	httpClient := session.NewHTTPClient(
		session.WithMaxRetries(cfg.MaxRetries),
		session.WithTimeout(cfg.RequestTimeout),
		session.WithTransportLogger(c.log),
	)

	var provider auth.Provider
	switch cfg.AuthMode {
	case config.AuthJWT:
		provider, err = auth.NewJWT(httpClient, sel.Endpoints(), cfg.Username, cfg.Password,
			auth.WithRefreshThreshold(cfg.RefreshThreshold),
			auth.WithLogger(c.log),
			auth.WithMetrics(c.metrics),
		)
		if err != nil {
			return nil, err
		}
	case config.AuthBasic:
		provider = auth.NewBasic(cfg.Username, cfg.Password)
	}

	c.selector = sel
	c.provider = provider
	c.exec = session.New(httpClient, sel, provider,
		session.WithLogger(c.log),
		session.WithMetrics(c.metrics),
		session.WithMaxConflictRetries(cfg.MaxConflictRetries),
	)

	c.log.Info(context.Background(), "connection configured",
		"endpoints", sel.Endpoints(), "strategy", cfg.Strategy, "auth", cfg.AuthMode)
	return c, nil
}

// Executor exposes the session for raw calls.
func (c *Connection) Executor() session.Executor { return c.exec }

// Provider is the auth provider in use, nil for unauthenticated connections.
func (c *Connection) Provider() auth.Provider { return c.provider }

type VersionInfo struct {
	Server  string `json:"server"`
	Version string `json:"version"`
	License string `json:"license"`
}

// Version asks a coordinator for the server version.
func (c *Connection) Version(ctx context.Context) (VersionInfo, error) {
	var v VersionInfo
	resp, err := c.exec.Execute(ctx, http.MethodGet, common.VersionPath, nil, nil)
	if err != nil {
		return v, err
	}
	if err := resp.Err(); err != nil {
		return v, err
	}
	if err := resp.Decode(&v); err != nil {
		return v, err
	}
	return v, nil
}

// Database returns a handle to the named database. It does not check that
// the database exists.
func (c *Connection) Database(name string) *Database {
	return &Database{
		conn:        c,
		name:        name,
		base:        fmt.Sprintf("/_db/%s", url.PathEscape(name)),
		collections: make(map[string]*Collection),
		registry:    models.NewRegistry(nil),
	}
}
