package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/models"
	"github.com/ayush/inkwell/backend/internal/store/mock"
)

func newTestService(t *testing.T) (*Service, *mock.RelationalStore) {
	t.Helper()
	users := mock.NewRelationalStore()
	svc := NewService(users, NewTokenManager(StaticKey("test-secret")))
	svc.cost = bcrypt.MinCost
	return svc, users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, users := newTestService(t)

	res, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "alice", res.User.Username)
	assert.Equal(t, "a@x.com", res.User.Email)

	stored, err := users.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1")))

	id, err := svc.VerifyToken(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id.UserID)
}

func TestRegisterConflict(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	t.Run("same email", func(t *testing.T) {
		_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice2", Email: "a@x.com", Password: "secret2"})
		assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	})

	t.Run("same username", func(t *testing.T) {
		_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "other@x.com", Password: "secret2"})
		assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)
	})
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, models.RegisterRequest{Username: "", Email: "not-an-email", Password: "abc"})
	require.True(t, apperr.Is(err, apperr.KindValidation))

	var e *apperr.Error
	require.True(t, errors.As(err, &e))
	fields := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, f.Field)
	}
	assert.Equal(t, []string{"email", "password", "username"}, fields)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := svc.Login(ctx, models.LoginRequest{Email: "a@x.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "alice", res.User.Username)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		_, wrongPw := svc.Login(ctx, models.LoginRequest{Email: "a@x.com", Password: "nope!!"})
		_, unknown := svc.Login(ctx, models.LoginRequest{Email: "ghost@x.com", Password: "secret1"})

		assert.True(t, apperr.Is(wrongPw, apperr.KindInvalidCredentials))
		assert.True(t, apperr.Is(unknown, apperr.KindInvalidCredentials))
		assert.Equal(t, wrongPw.Error(), unknown.Error())
	})

	t.Run("missing password", func(t *testing.T) {
		_, err := svc.Login(ctx, models.LoginRequest{Email: "a@x.com"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.VerifyToken(context.Background(), "garbage")
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	res, err := svc.Register(ctx, models.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)

	me, err := svc.Me(ctx, res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.User, *me)

	_, err = svc.Me(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
