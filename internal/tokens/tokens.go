// Package tokens inspects JWT access tokens without verifying them. The
// client holds no signing keys; expiry is peeked locally only to decide
// whether a validate call is worth making before falling back to refresh.
package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var parser = jwt.NewParser()

// Expired reports whether token carries an exp claim in the past, with
// leeway subtracted. Tokens that do not parse or carry no exp claim report
// false: the backend stays the authority on their validity.
func Expired(token string, leeway time.Duration) bool {
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}

	return time.Now().Add(leeway).After(exp.Time)
}

// ExpiresAt returns the exp claim of token, or the zero time when the token
// does not parse or carries no expiry.
func ExpiresAt(token string) time.Time {
	if token == "" {
		return time.Time{}
	}

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
