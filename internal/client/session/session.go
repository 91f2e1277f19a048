package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/docdb/internal/client/auth"
	"github.com/dmitrijs2005/docdb/internal/client/endpoint"
	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/dmitrijs2005/docdb/internal/metrics"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Executor is the contract consumed by the cursor and client layers.
type Executor interface {
	Execute(ctx context.Context, method, path string, body any, params url.Values) (*Response, error)
}

var _ Executor = (*Session)(nil)

type Session struct {
	http               *resty.Client
	selector           endpoint.Selector
	auth               auth.Provider
	log                logging.Logger
	metrics            *metrics.Metrics
	maxConflictRetries int
}

type Option func(*Session)

func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) { s.metrics = m }
}

// WithMaxConflictRetries bounds how many conflicting responses are accepted
// before the last one is handed back. Values of 0 and 1 disable the retry;
// a negative value retries until the context is done.
func WithMaxConflictRetries(n int) Option {
	return func(s *Session) { s.maxConflictRetries = n }
}

// New creates a session sending requests through client. A nil provider
// sends requests without credentials.
func New(client *resty.Client, selector endpoint.Selector, provider auth.Provider, opts ...Option) *Session {
	s := &Session{
		http:               client,
		selector:           selector,
		auth:               provider,
		log:                logging.NewNop(),
		metrics:            metrics.NewUnregistered(),
		maxConflictRetries: DefaultMaxConflictRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "session")

	client.AddRetryHook(func(r *resty.Response, err error) {
		if r == nil || r.Request == nil {
			return
		}
		s.log.Warn(r.Request.Context(), "transport retry",
			"method", r.Request.Method, "url", r.Request.URL, "attempt", r.Request.Attempt, "error", err)
	})
	return s
}

// Execute runs one logical call. See the package documentation for the
// retry and refresh rules.
func (s *Session) Execute(ctx context.Context, method, path string, body any, params url.Values) (*Response, error) {
	refreshed := false
	conflicts := 0

	for {
		resp, err := s.do(ctx, method, path, body, params)
		if err != nil {
			return nil, err
		}

		if len(resp.Body) == 0 && method != http.MethodHead {
			return nil, resp.wrap(fmt.Errorf("%w: empty response body", common.ErrConnectivity))
		}

		if resp.StatusCode == http.StatusUnauthorized {
			refresher, ok := s.auth.(auth.Refresher)
			if !ok || refreshed {
				return nil, resp.wrap(fmt.Errorf("%w: request rejected", common.ErrAuthorization))
			}
			if err := refresher.Refresh(ctx); err != nil {
				return nil, resp.wrap(fmt.Errorf("%w: refresh after 401: %w", common.ErrAuthorization, err))
			}
			refreshed = true
			continue
		}

		if resp.Conflict() {
			conflicts++
			if s.maxConflictRetries < 0 || conflicts < s.maxConflictRetries {
				s.metrics.ConflictRetriesTotal.Inc()
				s.log.Warn(ctx, "write conflict, retrying", "method", method, "url", resp.URL, "conflicts", conflicts)
				if err := ctx.Err(); err != nil {
					return nil, resp.wrap(fmt.Errorf("%w: %w", common.ErrConnectivity, err))
				}
				continue
			}
		}

		return resp, nil
	}
}

func (s *Session) do(ctx context.Context, method, path string, body any, params url.Values) (*Response, error) {
	target := s.selector.Next() + path
	requestID := uuid.NewString()

	req := s.http.R().
		SetContext(ctx).
		SetHeader(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}
	if s.auth != nil {
		if err := s.auth.Attach(ctx, req); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	resp, err := req.Execute(method, target)
	if err != nil {
		s.log.Error(ctx, "request failed", "request_id", requestID, "method", method, "url", target, "error", err)
		return nil, &common.RequestError{Method: method, URL: target, Err: fmt.Errorf("%w: %w", common.ErrConnectivity, err)}
	}

	s.metrics.ObserveRequest(method, resp.StatusCode())
	s.log.Debug(ctx, "request done",
		"request_id", requestID, "method", method, "url", target,
		"status", resp.StatusCode(), "latency", time.Since(start))

	return &Response{
		Method:     method,
		URL:        target,
		StatusCode: resp.StatusCode(),
		Header:     resp.Header(),
		Body:       resp.Body(),
	}, nil
}

func (s *Session) Get(ctx context.Context, path string, params url.Values) (*Response, error) {
	return s.Execute(ctx, http.MethodGet, path, nil, params)
}

func (s *Session) Post(ctx context.Context, path string, body any, params url.Values) (*Response, error) {
	return s.Execute(ctx, http.MethodPost, path, body, params)
}

func (s *Session) Put(ctx context.Context, path string, body any, params url.Values) (*Response, error) {
	return s.Execute(ctx, http.MethodPut, path, body, params)
}

func (s *Session) Patch(ctx context.Context, path string, body any, params url.Values) (*Response, error) {
	return s.Execute(ctx, http.MethodPatch, path, body, params)
}

func (s *Session) Delete(ctx context.Context, path string, params url.Values) (*Response, error) {
	return s.Execute(ctx, http.MethodDelete, path, nil, params)
}

func (s *Session) Head(ctx context.Context, path string, params url.Values) (*Response, error) {
	return s.Execute(ctx, http.MethodHead, path, nil, params)
}

func (s *Session) Options(ctx context.Context, path string, params url.Values) (*Response, error) {
	return s.Execute(ctx, http.MethodOptions, path, nil, params)
}
