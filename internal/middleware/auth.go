package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/auth"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const identityKey contextKey = "identity"

// TokenVerifier resolves a bearer token to a caller identity.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*auth.Identity, error)
}

// RequireAuth validates the bearer token and injects the caller identity
// into the request context. Requests without a valid token get 401.
func RequireAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				apperr.Write(w, r, apperr.Unauthenticated("No token, authorization denied"))
				return
			}

			id, err := v.VerifyToken(r.Context(), token)
			if err != nil {
				apperr.Write(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// OptionalAuth attaches the caller identity when a valid bearer token is
// present and otherwise lets the request through anonymously.
func OptionalAuth(v TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if id, err := v.VerifyToken(r.Context(), token); err == nil {
					r = r.WithContext(WithIdentity(r.Context(), id))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the caller identity, or nil for anonymous requests.
func IdentityFrom(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
