package platform

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultSessionTTL is used when the backend token carries no exp claim.
const defaultSessionTTL = 30 * time.Minute

// tokenExpiry extracts the expiry from a backend-issued JWT without
// verifying the signature. Verification belongs to the backend; this
// service only needs the expiry to size the server-side session TTL.
func tokenExpiry(raw string, now time.Time) time.Time {
	if raw == "" {
		return now.Add(defaultSessionTTL)
	}

	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return now.Add(defaultSessionTTL)
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return now.Add(defaultSessionTTL)
	}
	if exp.Time.Before(now) {
		return now.Add(defaultSessionTTL)
	}
	return exp.Time
}

// buildTestToken creates an unsigned JWT with the given expiry. It lives
// outside a _test file because TestToken wraps it for the devauth
// adapter, which mints dev-mode bearer tokens with it.
func buildTestToken(exp time.Time) string {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		// SigningMethodNone cannot fail with the unsafe key; keep the
		// signature total anyway.
		return ""
	}
	return signed
}

// TestToken mints an unsigned token with the given expiry for use in
// development mode and tests.
func TestToken(exp time.Time) (string, error) {
	tok := buildTestToken(exp)
	if tok == "" {
		return "", fmt.Errorf("mint test token")
	}
	return tok, nil
}
