package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired decodes the token's embedded expiry claim without verifying
// the signature (the backend is the verifier; this is a local fast-fail).
// Absent, unparseable and past expiries all count as expired.
func tokenExpired(raw string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(now)
}
