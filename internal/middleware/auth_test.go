package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/auth"
)

type stubVerifier struct{}

func (stubVerifier) VerifyToken(_ context.Context, token string) (*auth.Identity, error) {
	if token != "good" {
		return nil, apperr.Unauthenticated("Invalid or expired token")
	}
	return &auth.Identity{UserID: "u1", Username: "alice", Email: "a@x.com"}, nil
}

// capture records the identity seen by the downstream handler.
func capture() (http.Handler, **auth.Identity, *bool) {
	var seen *auth.Identity
	var called bool
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		seen = IdentityFrom(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &seen, &called
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid token", "Bearer good", http.StatusOK},
		{"lowercase scheme", "bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"bad token", "Bearer bad", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, seen, called := capture()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			RequireAuth(stubVerifier{})(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status == http.StatusOK, *called)
			if tt.status == http.StatusOK {
				assert.Equal(t, "alice", (*seen).Username)
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	t.Run("attaches identity", func(t *testing.T) {
		next, seen, _ := capture()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()

		OptionalAuth(stubVerifier{})(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "u1", (*seen).UserID)
	})

	t.Run("anonymous on bad token", func(t *testing.T) {
		next, seen, called := capture()
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer bad")
		rec := httptest.NewRecorder()

		OptionalAuth(stubVerifier{})(next).ServeHTTP(rec, req)

		assert.True(t, *called)
		assert.Nil(t, *seen)
	})
}

func TestIdentityFromEmptyContext(t *testing.T) {
	assert.Nil(t, IdentityFrom(context.Background()))
}
