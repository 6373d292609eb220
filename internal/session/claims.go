package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is what can be read from a token without the signing key. Tokens
// that are not JWTs yield the zero value.
type Claims struct {
	Subject   string    `json:"subject,omitempty" yaml:"subject,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty" yaml:"expires_at,omitempty"`
	IssuedAt  time.Time `json:"issued_at,omitempty" yaml:"issued_at,omitempty"`
}

// Inspect parses token without verifying its signature. The result is only
// used for display and for skipping a doomed profile request.
func Inspect(token string) Claims {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}
	}
	var c Claims
	if sub, err := parsed.Claims.GetSubject(); err == nil {
		c.Subject = sub
	}
	if exp, err := parsed.Claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	if iat, err := parsed.Claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	return c
}

// Expired reports whether the token carried an expiry that is already past.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}
