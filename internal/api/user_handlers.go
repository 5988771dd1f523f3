package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get my profile",
		Description: "Returns the authenticated user with strengths and published books",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetCurrentProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCurrentProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update my profile",
		Description: "Changes only the supplied fields. Empty optional strings clear the field.",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleUpdateCurrentProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get profile",
		Description: "Returns a user with strengths and published books",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "listStrengths",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me/strengths",
		Summary:     "List my strengths",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleListStrengths)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addStrength",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/me/strengths",
		Summary:       "Add strength",
		Description:   "Declares a genre the user is strong in and returns the updated set",
		Tags:          []string{"Users"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddStrength)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeStrength",
		Method:      http.MethodDelete,
		Path:        "/api/v1/users/me/strengths/{genre_id}",
		Summary:     "Remove strength",
		Description: "Removes a declared genre and returns the remaining set",
		Tags:        []string{"Users"},
		Security:    bearerSecurity,
	}, s.handleRemoveStrength)
}

// ProfileOutput wraps a profile.
type ProfileOutput struct {
	Body *service.Profile
}

// GetProfileInput identifies a user.
type GetProfileInput struct {
	ID string `path:"id" doc:"User ID"`
}

// UpdateProfileInput is the request for updateCurrentProfile.
type UpdateProfileInput struct {
	Body service.UpdateProfileRequest
}

// GenresOutput wraps a list of genres.
type GenresOutput struct {
	Body []*domain.Genre
}

// AddStrengthInput is the request for addStrength.
type AddStrengthInput struct {
	Body struct {
		GenreID string `json:"genre_id,omitempty" doc:"Genre ID"`
	}
}

// RemoveStrengthInput identifies a strength.
type RemoveStrengthInput struct {
	GenreID string `path:"genre_id" doc:"Genre ID"`
}

func (s *Server) handleGetCurrentProfile(ctx context.Context, _ *struct{}) (*ProfileOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.profileOutput(ctx, userID)
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	return s.profileOutput(ctx, input.ID)
}

func (s *Server) profileOutput(ctx context.Context, userID string) (*ProfileOutput, error) {
	profile, err := s.services.Profile.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleUpdateCurrentProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Profile.Update(ctx, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}

func (s *Server) handleListStrengths(ctx context.Context, _ *struct{}) (*GenresOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	genres, err := s.services.Profile.ListStrengths(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &GenresOutput{Body: genres}, nil
}

func (s *Server) handleAddStrength(ctx context.Context, input *AddStrengthInput) (*GenresOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	genres, err := s.services.Profile.AddStrength(ctx, userID, input.Body.GenreID)
	if err != nil {
		return nil, err
	}
	return &GenresOutput{Body: genres}, nil
}

func (s *Server) handleRemoveStrength(ctx context.Context, input *RemoveStrengthInput) (*GenresOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	genres, err := s.services.Profile.RemoveStrength(ctx, userID, input.GenreID)
	if err != nil {
		return nil, err
	}
	return &GenresOutput{Body: genres}, nil
}
