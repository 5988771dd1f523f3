package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/normalize"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/store"
)

// ProfileService reads and edits user profiles and genre strengths.
type ProfileService struct {
	Deps
}

// NewProfileService creates a profile service.
func NewProfileService(deps Deps) *ProfileService {
	return &ProfileService{Deps: deps.withDefaults()}
}

// Profile is a user with their strengths and published books.
type Profile struct {
	User      *domain.User    `json:"user"`
	Strengths []*domain.Genre `json:"strengths"`
	Books     []*domain.Book  `json:"books"`
}

// UpdateProfileRequest is the field table of updateProfile. Nil fields are
// left unchanged; empty optional strings clear the field.
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,min=2,max=40" msg:"Name must be between 2 and 40 characters."`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=250" msg:"Bio must not be more than 250 characters."`
	Born        *string `json:"born,omitempty" validate:"omitempty,isodate" msg:"Invalid birth date."`
	Website     *string `json:"website,omitempty" validate:"omitempty,url" msg:"Website must be a valid URL."`
	SocialMedia *string `json:"social_media,omitempty" validate:"omitempty,url" msg:"Social media must be a valid URL."`
	IsAuthor    *bool   `json:"is_author,omitempty"`
}

// Get returns the profile of userID.
func (s *ProfileService) Get(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}

	strengths, err := s.Store.ListStrengths(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list strengths: %w", err)
	}
	books, err := s.Store.ListBooksByAuthor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	return &Profile{User: user, Strengths: strengths, Books: books}, nil
}

// Update changes the supplied profile fields of userID.
func (s *ProfileService) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.update(ctx, userID, req)
	return user, s.observe("update_profile", err)
}

func (s *ProfileService) update(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	req.Name = mapPtr(req.Name, normalize.Label)
	req.Bio = mapPtr(req.Bio, normalize.Text)
	req.Born = mapPtr(req.Born, normalize.Text)
	req.Website = mapPtr(req.Website, normalize.Text)
	req.SocialMedia = mapPtr(req.SocialMedia, normalize.Text)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.Store.UpdateUserProfile(ctx, userID, domain.ProfileUpdate{
		Name:        req.Name,
		Bio:         req.Bio,
		Born:        req.Born,
		Website:     req.Website,
		SocialMedia: req.SocialMedia,
		IsAuthor:    req.IsAuthor,
	})
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}

	s.index(search.UserDocument(user))
	s.Logger.Info("profile updated", "user_id", userID)

	return user, nil
}

// ListStrengths returns the genres userID declared.
func (s *ProfileService) ListStrengths(ctx context.Context, userID string) ([]*domain.Genre, error) {
	if _, err := s.Store.GetUser(ctx, userID); err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	return s.Store.ListStrengths(ctx, userID)
}

// AddStrength adds genreID to the strengths of userID and returns the set.
func (s *ProfileService) AddStrength(ctx context.Context, userID, genreID string) ([]*domain.Genre, error) {
	genres, err := s.addStrength(ctx, userID, genreID)
	return genres, s.observe("add_strength", err)
}

func (s *ProfileService) addStrength(ctx context.Context, userID, genreID string) ([]*domain.Genre, error) {
	if _, err := s.Store.GetGenre(ctx, genreID); err != nil {
		return nil, notFound(err, msgGenreNotFound)
	}

	if err := s.Store.AddStrength(ctx, userID, genreID); err != nil {
		if errors.Is(err, store.ErrReferenceMissing) {
			return nil, domainerrors.NotFound(msgUserNotFound)
		}
		return nil, conflict(err, msgStrengthExists, "add strength")
	}

	s.Logger.Info("strength added", "user_id", userID, "genre_id", genreID)
	return s.Store.ListStrengths(ctx, userID)
}

// RemoveStrength removes genreID from the strengths of userID and returns
// the remaining set.
func (s *ProfileService) RemoveStrength(ctx context.Context, userID, genreID string) ([]*domain.Genre, error) {
	genres, err := s.removeStrength(ctx, userID, genreID)
	return genres, s.observe("remove_strength", err)
}

func (s *ProfileService) removeStrength(ctx context.Context, userID, genreID string) ([]*domain.Genre, error) {
	if _, err := s.Store.GetGenre(ctx, genreID); err != nil {
		return nil, notFound(err, msgGenreNotFound)
	}
	if err := s.Store.RemoveStrength(ctx, userID, genreID); err != nil {
		return nil, notFound(err, msgStrengthNotFound)
	}

	s.Logger.Info("strength removed", "user_id", userID, "genre_id", genreID)
	return s.Store.ListStrengths(ctx, userID)
}

// ListGenres returns the genre lookup table.
func (s *ProfileService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.Store.ListGenres(ctx)
}

// mapPtr applies fn to *p, keeping nil as nil.
func mapPtr[T any](p *T, fn func(T) T) *T {
	if p == nil {
		return nil
	}
	v := fn(*p)
	return &v
}
