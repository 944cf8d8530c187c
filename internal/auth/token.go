// Package auth reads what it can from a bearer token for display.
// Tokens are opaque to parley; nothing here verifies a signature, and
// a token that is not a JWT is still sent as-is.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Info is what the header and `parley login` show about a token.
type Info struct {
	Subject   string
	Email     string
	ExpiresAt time.Time // zero when the token carries no exp claim
}

// Expired reports whether the token's exp claim is before now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// Label returns the best human-readable identity in the token.
func (i Info) Label() string {
	if i.Email != "" {
		return i.Email
	}
	return i.Subject
}

// Inspect decodes the claims of a JWT without verifying it.
// ok is false when raw is not a JWT.
func Inspect(raw string) (info Info, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return Info{}, false
	}

	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		info.Subject = sub
	} else if uid, ok := claims["user_id"].(string); ok {
		info.Subject = uid
	}
	if email, ok := claims["email"].(string); ok {
		info.Email = email
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, true
}
