package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/inkwell/backend/internal/apperr"
	"github.com/ayush/inkwell/backend/internal/models"
)

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Result is returned by Register and Login.
type Result struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Service implements registration, login and token verification.
type Service struct {
	users  UserStore
	tokens *TokenManager
	cost   int
}

func NewService(users UserStore, tokens *TokenManager) *Service {
	return &Service{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Register creates a user and signs them in.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*Result, error) {
	if err := apperr.FromValidation(req.Validate()); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	user, err := s.users.CreateUser(ctx, req.Username, req.Email, string(hashed))
	if errors.Is(err, models.ErrDuplicate) {
		return nil, apperr.Conflict("Username or email already exists")
	}
	if err != nil {
		return nil, apperr.Internal("create user", err)
	}
	return s.signIn(ctx, user)
}

// Login checks credentials. Unknown email and wrong password are reported
// identically.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*Result, error) {
	if err := apperr.FromValidation(req.Validate()); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.InvalidCredentials()
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, apperr.InvalidCredentials()
	}
	return s.signIn(ctx, user)
}

// VerifyToken resolves a bearer token to an identity without touching the
// user store.
func (s *Service) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	id, err := s.tokens.Verify(ctx, token)
	if err != nil {
		return nil, apperr.Unauthenticated("Invalid or expired token")
	}
	return id, nil
}

// Me loads the public projection of the given user.
func (s *Service) Me(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	pub := user.Public()
	return &pub, nil
}

func (s *Service) signIn(ctx context.Context, user *models.User) (*Result, error) {
	token, err := s.tokens.Issue(ctx, Identity{UserID: user.ID, Username: user.Username, Email: user.Email})
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &Result{Token: token, User: user.Public()}, nil
}
