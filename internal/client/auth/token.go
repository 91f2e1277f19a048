package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/docdb/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Token is a decoded bearer token.
type Token struct {
	IssuedAt  time.Time
	ExpiresAt time.Time
	Claims    jwt.MapClaims
	Raw       string
}

// ParseToken decodes the payload segment of a three-part token without
// verifying its signature; the server is the only party holding the key.
// A token without an exp claim is rejected. When iat is missing, issuedAt
// is used instead.
func ParseToken(raw string, issuedAt time.Time) (*Token, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: parse token: %v", common.ErrDecoding, err)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return nil, fmt.Errorf("%w: exp claim: %v", common.ErrDecoding, err)
	}
	if exp == nil {
		return nil, fmt.Errorf("%w: token has no exp claim", common.ErrDecoding)
	}

	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		issuedAt = iat.Time
	}

	return &Token{
		Raw:       raw,
		IssuedAt:  issuedAt,
		ExpiresAt: exp.Time,
		Claims:    claims,
	}, nil
}
