// FilePath: api/middleware/api.middleware.auth.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vitaltrack/pulsehub/internal/errors"
)

// Identity is the verified caller identity a session token resolves to.
type Identity struct {
	Email string `json:"email"`
}

type contextKey string

const identityKey contextKey = "identity"

// AuthConfig carries the HMAC verification key for session tokens.
type AuthConfig struct {
	JWTSecret string
}

// AuthMiddleware verifies customer session tokens. Verification is local
// and stateless: given the key, the same token always yields the same
// identity. Token issuance belongs to the login service.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(config AuthConfig) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(config.JWTSecret)}
}

// Authenticate validates the token and adds the caller identity to the
// request context. Absent tokens and undecodable/expired tokens map to
// distinct messages under the same 401.
func (a *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			handleError(w, errors.NewAuthError("missing credential", nil))
			return
		}

		identity, err := a.Verify(token)
		if err != nil {
			handleError(w, errors.NewAuthError("invalid credential", err))
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Verify decodes and verifies a raw token, returning the identity it
// carries. Exposed separately so ingestion-free callers and tests can
// verify without an HTTP round trip.
func (a *AuthMiddleware) Verify(token string) (*Identity, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("token verification failed: %w", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("token carries no email claim")
	}

	return &Identity{Email: email}, nil
}

// IdentityFrom retrieves the verified caller identity from the context.
func IdentityFrom(ctx context.Context) (*Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*Identity)
	return identity, ok
}

// extractToken accepts the X-Auth header used by the device dashboard as
// well as a standard Authorization bearer token.
func extractToken(r *http.Request) string {
	if token := r.Header.Get("X-Auth"); token != "" {
		return token
	}
	bearerToken := r.Header.Get("Authorization")
	if parts := strings.Split(bearerToken, " "); len(parts) == 2 {
		return parts[1]
	}
	return ""
}

func handleError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(*errors.APIError); ok {
		http.Error(w, apiErr.Message, apiErr.Code)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
