package auth

import (
	"context"

	"github.com/go-resty/resty/v2"
)

// Provider attaches credentials to an outbound request.
type Provider interface {
	Attach(ctx context.Context, req *resty.Request) error
}

// Refresher is a Provider whose credentials can be renewed on demand.
type Refresher interface {
	Provider
	Refresh(ctx context.Context) error
}

// Basic uses static username/password credentials.
type Basic struct {
	username string
	password string
}

func NewBasic(username, password string) *Basic {
	return &Basic{username: username, password: password}
}

func (b *Basic) Attach(_ context.Context, req *resty.Request) error {
	req.SetBasicAuth(b.username, b.password)
	return nil
}
