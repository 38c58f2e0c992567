package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = Identity{UserID: "6f1c2a9e-0000-4000-8000-000000000001", Username: "alice", Email: "a@x.com"}

func TestTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewTokenManager(StaticKey("test-secret"))

	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	got, err := m.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, alice, *got)
}

func TestTokenExpiresAfterSevenDays(t *testing.T) {
	ctx := context.Background()
	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager(StaticKey("test-secret"))
	m.now = func() time.Time { return issued }

	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(TokenTTL - time.Minute) }
	_, err = m.Verify(ctx, token)
	assert.NoError(t, err)

	m.now = func() time.Time { return issued.Add(TokenTTL + time.Minute) }
	_, err = m.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejections(t *testing.T) {
	ctx := context.Background()
	m := NewTokenManager(StaticKey("test-secret"))

	other, err := NewTokenManager(StaticKey("other-secret")).Issue(ctx, alice)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   alice.UserID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":     "",
		"garbage":   "not.a.token",
		"wrong key": other,
		"alg none":  none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(ctx, token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

type rotatingKey struct{ fail bool }

func (k *rotatingKey) SigningKey(context.Context) ([]byte, error) {
	if k.fail {
		return nil, errors.New("key store unavailable")
	}
	return []byte("rotating"), nil
}

func TestTokenKeySourceFailure(t *testing.T) {
	ctx := context.Background()
	keys := &rotatingKey{}
	m := NewTokenManager(keys)

	token, err := m.Issue(ctx, alice)
	require.NoError(t, err)

	keys.fail = true
	_, err = m.Issue(ctx, alice)
	assert.Error(t, err)
	_, err = m.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
