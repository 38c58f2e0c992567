package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued identity token stays valid.
const TokenTTL = 7 * 24 * time.Hour

// Identity is the caller identity asserted by a verified token.
type Identity struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// KeySource supplies the HMAC key used to sign and verify tokens.
type KeySource interface {
	SigningKey(ctx context.Context) ([]byte, error)
}

// StaticKey is a KeySource backed by a single configured secret.
type StaticKey []byte

func (k StaticKey) SigningKey(context.Context) ([]byte, error) {
	if len(k) == 0 {
		return nil, errors.New("empty signing key")
	}
	return k, nil
}

// Claims is the JWT payload. Subject holds the user id.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies identity tokens.
type TokenManager struct {
	keys KeySource
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenManager(keys KeySource) *TokenManager {
	return &TokenManager{keys: keys, ttl: TokenTTL, now: time.Now}
}

// Issue signs a token for the given identity.
func (m *TokenManager) Issue(ctx context.Context, id Identity) (string, error) {
	key, err := m.keys.SigningKey(ctx)
	if err != nil {
		return "", fmt.Errorf("signing key: %w", err)
	}
	now := m.now()
	claims := Claims{
		Username: id.Username,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

// Verify parses and validates a token. Every failure is reported as an
// error wrapping ErrInvalidToken.
func (m *TokenManager) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (interface{}, error) {
			return m.keys.SigningKey(ctx)
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return &Identity{UserID: claims.Subject, Username: claims.Username, Email: claims.Email}, nil
}

// ErrInvalidToken marks a token that is malformed, wrongly signed or expired.
var ErrInvalidToken = errors.New("invalid token")
