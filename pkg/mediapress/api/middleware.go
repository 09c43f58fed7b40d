package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/jwtauth"

	"github.com/mediapress/mediapress/pkg/mediapress"
)

const tokenTTL = 8 * time.Hour

// TokenAuth issues and verifies HS256 bearer tokens for the API surface and
// keeps a denylist of tokens revoked by logout.
type TokenAuth struct {
	ja *jwtauth.JWTAuth

	mu      sync.Mutex
	revoked map[string]time.Time // raw token -> revocation expiry
}

// NewTokenAuth creates a token authority signing with the given secret.
func NewTokenAuth(secret string) *TokenAuth {
	return &TokenAuth{
		ja:      jwtauth.New("HS256", []byte(secret), nil),
		revoked: make(map[string]time.Time),
	}
}

// IssueToken creates a bearer token carrying the user identity and access
// level claim.
func (a *TokenAuth) IssueToken(user *mediapress.User) (string, error) {
	claims := map[string]interface{}{
		"sub":    user.ID.String(),
		"email":  user.Email,
		"access": user.AccessLevel,
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, tokenTTL)

	_, tokenString, err := a.ja.Encode(claims)
	return tokenString, err
}

// Verifier extracts and parses the bearer token into the request context.
func (a *TokenAuth) Verifier() func(http.Handler) http.Handler {
	return jwtauth.Verifier(a.ja)
}

// Authenticate rejects requests without a valid, non-revoked token.
func (a *TokenAuth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			respondFailure(w, r, http.StatusUnauthorized, "Unauthenticated.", nil)
			return
		}
		if a.isRevoked(jwtauth.TokenFromHeader(r)) {
			respondFailure(w, r, http.StatusUnauthorized, "Unauthenticated.", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccess rejects authenticated requests whose access claim is below
// level.
func (a *TokenAuth) RequireAccess(level int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				respondFailure(w, r, http.StatusUnauthorized, "Unauthenticated.", nil)
				return
			}
			if accessLevel(claims) < level {
				respondFailure(w, r, http.StatusForbidden, "Forbidden.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Revoke denylists a raw token until it would have expired anyway.
func (a *TokenAuth) Revoke(token string) {
	if token == "" {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	for tok, until := range a.revoked {
		if now.After(until) {
			delete(a.revoked, tok)
		}
	}
	a.revoked[token] = now.Add(tokenTTL)
}

func (a *TokenAuth) isRevoked(token string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	until, ok := a.revoked[token]
	return ok && time.Now().Before(until)
}

// accessLevel reads the numeric access claim; JSON numbers decode as float64.
func accessLevel(claims map[string]interface{}) int {
	switch v := claims["access"].(type) {
	case float64:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}
