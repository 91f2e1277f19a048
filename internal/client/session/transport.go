package session

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultMaxRetries         = 3
	DefaultMaxConflictRetries = 5
	DefaultTimeout            = 30 * time.Second
	defaultRetryWait          = 100 * time.Millisecond
	defaultRetryMaxWait       = 2 * time.Second
)

type transportOptions struct {
	httpClient   *http.Client
	log          logging.Logger
	maxRetries   int
	timeout      time.Duration
	retryWait    time.Duration
	retryMaxWait time.Duration
}

type TransportOption func(*transportOptions)

// WithMaxRetries sets the connection-level retry budget. Failed attempts
// below it are invisible to callers.
func WithMaxRetries(n int) TransportOption {
	return func(o *transportOptions) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithTimeout bounds a single attempt; a timed-out attempt counts against
// the retry budget.
func WithTimeout(d time.Duration) TransportOption {
	return func(o *transportOptions) { o.timeout = d }
}

// WithRetryWait sets the backoff bounds between connection retries.
func WithRetryWait(wait, maxWait time.Duration) TransportOption {
	return func(o *transportOptions) {
		o.retryWait = wait
		o.retryMaxWait = maxWait
	}
}

// WithTransportLogger routes resty's own messages (failed attempts, warnings)
// to l. Without it they are dropped.
func WithTransportLogger(l logging.Logger) TransportOption {
	return func(o *transportOptions) { o.log = l }
}

// WithHTTPClient uses hc as the underlying client (custom transport, TLS).
func WithHTTPClient(hc *http.Client) TransportOption {
	return func(o *transportOptions) { o.httpClient = hc }
}

// NewHTTPClient builds the resty client shared by the session and the
// login calls of auth providers.
func NewHTTPClient(opts ...TransportOption) *resty.Client {
	o := transportOptions{
		maxRetries:   DefaultMaxRetries,
		timeout:      DefaultTimeout,
		retryWait:    defaultRetryWait,
		retryMaxWait: defaultRetryMaxWait,
		log:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	var c *resty.Client
	if o.httpClient != nil {
		c = resty.NewWithClient(o.httpClient)
	} else {
		c = resty.New()
	}
	if o.timeout > 0 {
		c.SetTimeout(o.timeout)
	}

	return c.
		SetLogger(restyLogger{log: o.log.With("component", "transport")}).
		SetRetryCount(o.maxRetries).
		SetRetryWaitTime(o.retryWait).
		SetRetryMaxWaitTime(o.retryMaxWait).
		SetHeader("Accept", "application/json")
}

// restyLogger adapts logging.Logger to resty.Logger.
type restyLogger struct {
	log logging.Logger
}

var _ resty.Logger = restyLogger{}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error(context.Background(), restyMessage(format, v))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(context.Background(), restyMessage(format, v))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(context.Background(), restyMessage(format, v))
}

func restyMessage(format string, v []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
