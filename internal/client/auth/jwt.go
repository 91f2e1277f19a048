package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/dmitrijs2005/docdb/internal/logging"
	"github.com/dmitrijs2005/docdb/internal/metrics"
	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultRefreshThreshold is half the lifetime of the server's default
// 24-hour token.
const DefaultRefreshThreshold = 12 * time.Hour

// JWT is a bearer-token provider that logs in with username/password and
// refreshes the token before it expires.
type JWT struct {
	client    *resty.Client
	log       logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
	token     atomic.Pointer[Token]
	group     singleflight.Group
	username  string
	password  string
	endpoints []string
	threshold time.Duration
	loginMu   sync.Mutex
}

type JWTOption func(*JWT)

// WithRefreshThreshold sets how long before expiry the token is renewed.
func WithRefreshThreshold(d time.Duration) JWTOption {
	return func(p *JWT) {
		if d > 0 {
			p.threshold = d
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) JWTOption {
	return func(p *JWT) { p.now = now }
}

func WithLogger(l logging.Logger) JWTOption {
	return func(p *JWT) { p.log = l }
}

func WithMetrics(m *metrics.Metrics) JWTOption {
	return func(p *JWT) { p.metrics = m }
}

// NewJWT creates a provider that logs in through client against endpoints,
// tried in order. No network call is made until the first token is needed.
func NewJWT(client *resty.Client, endpoints []string, username, password string, opts ...JWTOption) (*JWT, error) {
	if len(endpoints) == 0 {
		return nil, common.ErrNoEndpoints
	}
	p := &JWT{
		client:    client,
		endpoints: append([]string(nil), endpoints...),
		username:  username,
		password:  password,
		threshold: DefaultRefreshThreshold,
		now:       time.Now,
		log:       logging.NewNop(),
		metrics:   metrics.NewUnregistered(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.With("component", "auth")
	return p, nil
}

// Current returns the stored token, or nil before the first login.
func (p *JWT) Current() *Token {
	return p.token.Load()
}

// Expiring reports whether the token is missing or its remaining validity is
// below the refresh threshold. For tokens living less than twice the
// threshold, half of their lifetime is used instead.
func (p *JWT) Expiring() bool {
	t := p.token.Load()
	if t == nil {
		return true
	}
	return t.ExpiresAt.Sub(p.now()) < p.thresholdFor(t)
}

func (p *JWT) thresholdFor(t *Token) time.Duration {
	th := p.threshold
	if life := t.ExpiresAt.Sub(t.IssuedAt); life > 0 && life/2 < th {
		th = life / 2
	}
	return th
}

// Token returns a usable token, logging in first when the current one is
// missing or expiring. When the refresh fails but the old token has not
// expired yet, the old token is returned.
func (p *JWT) Token(ctx context.Context) (string, error) {
	if !p.Expiring() {
		return p.token.Load().Raw, nil
	}

	p.loginMu.Lock()
	defer p.loginMu.Unlock()

	// Another caller may have refreshed while we waited for the guard.
	if !p.Expiring() {
		return p.token.Load().Raw, nil
	}

	t, err := p.login(ctx)
	if err != nil {
		if cur := p.token.Load(); cur != nil && cur.ExpiresAt.After(p.now()) {
			p.log.Warn(ctx, "token refresh failed, using current token", "error", err, "expires_at", cur.ExpiresAt)
			return cur.Raw, nil
		}
		return "", err
	}
	return t.Raw, nil
}

// Refresh logs in unconditionally. Concurrent calls share one login.
func (p *JWT) Refresh(ctx context.Context) error {
	_, err, _ := p.group.Do("refresh", func() (any, error) {
		p.loginMu.Lock()
		defer p.loginMu.Unlock()
		return p.login(ctx)
	})
	return err
}

func (p *JWT) Attach(ctx context.Context, req *resty.Request) error {
	tok, err := p.Token(ctx)
	if err != nil {
		return err
	}
	req.SetAuthToken(tok)
	return nil
}

type loginResponse struct {
	JWT string `json:"jwt"`
}

// login must be called with loginMu held.
func (p *JWT) login(ctx context.Context) (*Token, error) {
	body := map[string]string{"username": p.username, "password": p.password}

	var lastErr error
	for _, ep := range p.endpoints {
		url := ep + common.AuthPath

		resp, err := p.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(url)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, &common.RequestError{Method: http.MethodPost, URL: url, Err: fmt.Errorf("%w: %w", common.ErrConnectivity, ctxErr)}
			}
			p.log.Warn(ctx, "login endpoint unreachable", "endpoint", ep, "error", err)
			lastErr = &common.RequestError{Method: http.MethodPost, URL: url, Err: fmt.Errorf("%w: %v", common.ErrConnectivity, err)}
			continue
		}

		if resp.StatusCode() != http.StatusOK {
			return nil, &common.RequestError{
				Method:     http.MethodPost,
				URL:        url,
				StatusCode: resp.StatusCode(),
				Body:       resp.Body(),
				Err:        fmt.Errorf("%w: login rejected", common.ErrAuthorization),
			}
		}

		var lr loginResponse
		if err := json.Unmarshal(resp.Body(), &lr); err != nil || lr.JWT == "" {
			return nil, &common.RequestError{
				Method:     http.MethodPost,
				URL:        url,
				StatusCode: resp.StatusCode(),
				Body:       resp.Body(),
				Err:        fmt.Errorf("%w: login response carries no token", common.ErrAuthorization),
			}
		}

		t, err := ParseToken(lr.JWT, p.now())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrAuthorization, err)
		}

		p.token.Store(t)
		p.metrics.AuthRefreshesTotal.Inc()
		p.log.Info(ctx, "token refreshed", "endpoint", ep, "expires_at", t.ExpiresAt)
		return t, nil
	}

	if lastErr == nil {
		lastErr = errors.New("no endpoint tried")
	}
	return nil, fmt.Errorf("login failed on all %d endpoints: %w", len(p.endpoints), lastErr)
}
