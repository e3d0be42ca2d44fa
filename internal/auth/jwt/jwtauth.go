package jwt

import (
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
)

// New returns an HS256 token authority for secret, nil when secret is empty.
func New(secret string) *jwtauth.JWTAuth {
	if secret == "" {
		return nil
	}
	return jwtauth.New("HS256", []byte(secret), nil)
}

// VerifyToken returns the subject of a valid token.
func VerifyToken(jwtAuth *jwtauth.JWTAuth, token string) (string, error) {
	t, err := jwtauth.VerifyToken(jwtAuth, token)
	if err != nil {
		return "", err
	}
	return t.Subject(), nil
}

// NewToken creates a dashboard JWT with an optional subject claim.
func NewToken(jwtAuth *jwtauth.JWTAuth, ttl time.Duration, subject string) (string, error) {
	claims := map[string]interface{}{
		"exp": time.Now().Add(ttl).Unix(),
	}
	if subject != "" {
		claims["sub"] = subject
	}
	_, ts, err := jwtAuth.Encode(claims)
	if err != nil {
		return ts, err
	}
	return ts, nil
}

// Protect requires a valid bearer token on every request. With a nil authority
// requests pass through untouched.
func Protect(jwtAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	if jwtAuth == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	verify := jwtauth.Verifier(jwtAuth)
	return func(next http.Handler) http.Handler {
		return verify(jwtauth.Authenticator(next))
	}
}
