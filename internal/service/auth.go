package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vivilio/vivilio-server/internal/auth"
	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/id"
	"github.com/vivilio/vivilio-server/internal/normalize"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/store"
)

// AuthService registers accounts and exchanges credentials for access tokens.
type AuthService struct {
	Deps
	hasher *auth.Hasher
	tokens *auth.TokenService
	now    func() time.Time
}

// NewAuthService creates an authentication service.
func NewAuthService(deps Deps, hasher *auth.Hasher, tokens *auth.TokenService) *AuthService {
	return &AuthService{
		Deps:   deps.withDefaults(),
		hasher: hasher,
		tokens: tokens,
		now:    time.Now,
	}
}

// RegisterRequest is the field table of register.
type RegisterRequest struct {
	Email    string `json:"email,omitempty" validate:"required,email" msg:"Invalid email address."`
	Name     string `json:"name,omitempty" validate:"min=2,max=40" msg:"Name must be between 2 and 40 characters."`
	Password string `json:"password,omitempty" validate:"min=6,max=1024" msg:"Password must be at least 6 characters." msg_max:"Password must not be more than 1024 characters."`
}

// LoginRequest carries the credentials of authenticate.
type LoginRequest struct {
	Email    string `json:"email,omitempty" validate:"required" msg:"Please input all fields."`
	Password string `json:"password,omitempty" validate:"required" msg:"Please input all fields."`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// Register creates an account. Email uniqueness ignores case and is enforced
// by the store.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	user, err := s.register(ctx, req)
	return user, s.observe("register", err)
}

func (s *AuthService) register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalize.Text(req.Email)
	req.Name = normalize.Label(req.Name)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.User)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		Entity:       domain.Entity{ID: userID},
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		MemberSince:  time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
	}
	user.InitTimestamps()

	if err := s.Store.CreateUser(ctx, user); err != nil {
		return nil, conflict(err, msgEmailTaken, "create user")
	}

	s.index(search.UserDocument(user))
	s.Logger.Info("user registered", "user_id", user.ID)

	return user, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	resp, err := s.login(ctx, req)
	return resp, s.observe("login", err)
}

func (s *AuthService) login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Store.GetUserByEmail(ctx, normalize.Text(req.Email))
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}

	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials(msgIncorrectPass)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.Logger.Info("user logged in", "user_id", user.ID)

	return &LoginResponse{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresAt:   token.ExpiresAt,
		User:        user,
	}, nil
}

// Authenticate resolves a bearer token to the id of an existing user.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", domainerrors.Unauthorized("Invalid or expired token.").WithCause(err)
	}
	if _, err := s.Store.GetUser(ctx, claims.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", domainerrors.Unauthorized("Invalid or expired token.")
		}
		return "", fmt.Errorf("load token user: %w", err)
	}
	return claims.UserID, nil
}
