package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/api/v1/users",
		Summary:       "Register",
		Description:   "Creates an account. Emails are unique ignoring case.",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
		Middlewares:   huma.Middlewares{s.rateLimited},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Exchanges email and password for a bearer access token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.rateLimited},
	}, s.handleLogin)
}

// RegisterInput is the request for register.
type RegisterInput struct {
	Body service.RegisterRequest
}

// UserOutput wraps a single user.
type UserOutput struct {
	Body *domain.User
}

// LoginInput is the request for login.
type LoginInput struct {
	Body service.LoginRequest
}

// LoginOutput wraps the issued token.
type LoginOutput struct {
	Body *service.LoginResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Auth.Register(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	resp, err := s.services.Auth.Login(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: resp}, nil
}
