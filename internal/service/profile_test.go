package service

import (
	"context"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
)

func TestProfile_UpdateKeepsUnsetFields(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	u := env.register(t, "ana@example.com", "Ana")

	_, err := env.profiles.Update(ctx, u.ID, UpdateProfileRequest{
		Bio:     lo.ToPtr("Reads everything."),
		Website: lo.ToPtr("https://ana.example.com"),
	})
	require.NoError(t, err)

	updated, err := env.profiles.Update(ctx, u.ID, UpdateProfileRequest{Name: lo.ToPtr("Ana Reader")})
	require.NoError(t, err)

	assert.Equal(t, "Ana Reader", updated.Name)
	assert.Equal(t, "Reads everything.", updated.Bio)
	assert.Equal(t, "https://ana.example.com", updated.Website)
	assert.False(t, updated.IsAuthor)
}

func TestProfile_UpdateValidation(t *testing.T) {
	env := setupTest(t)
	u := env.register(t, "ana@example.com", "Ana")

	tests := []struct {
		name  string
		req   UpdateProfileRequest
		field string
		msg   string
	}{
		{"short name", UpdateProfileRequest{Name: lo.ToPtr("A")}, "name", "Name must be between 2 and 40 characters."},
		{"long bio", UpdateProfileRequest{Bio: lo.ToPtr(strings.Repeat("b", 251))}, "bio", "Bio must not be more than 250 characters."},
		{"bad born", UpdateProfileRequest{Born: lo.ToPtr("1990-13-01")}, "born", "Invalid birth date."},
		{"bad website", UpdateProfileRequest{Website: lo.ToPtr("not a url")}, "website", "Website must be a valid URL."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.profiles.Update(context.Background(), u.ID, tt.req)
			requireInvalidField(t, err, tt.field, tt.msg)
		})
	}
}

func TestProfile_GetListsPublishedBooks(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	author := env.registerAuthor(t, "ana@example.com", "Ana")
	book := env.publish(t, author, "Northern Lights")

	profile, err := env.profiles.Get(ctx, author.ID)
	require.NoError(t, err)
	assert.True(t, profile.User.IsAuthor)
	require.Len(t, profile.Books, 1)
	assert.Equal(t, book.ID, profile.Books[0].ID)
	assert.Empty(t, profile.Strengths)

	_, err = env.profiles.Get(ctx, "usr-missing")
	requireDomainError(t, err, domainerrors.CodeNotFound, "User's not found.")
}

func TestProfile_Strengths(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	u := env.register(t, "ana@example.com", "Ana")

	genres, err := env.profiles.ListGenres(ctx)
	require.NoError(t, err)
	fantasy, ok := lo.Find(genres, func(g *domain.Genre) bool { return g.Type == "Fantasy" })
	require.True(t, ok)

	strengths, err := env.profiles.AddStrength(ctx, u.ID, fantasy.ID)
	require.NoError(t, err)
	require.Len(t, strengths, 1)
	assert.Equal(t, "Fantasy", strengths[0].Type)

	_, err = env.profiles.AddStrength(ctx, u.ID, fantasy.ID)
	requireDomainError(t, err, domainerrors.CodeConflict, "Genre is already in strengths.")

	_, err = env.profiles.AddStrength(ctx, u.ID, "gen-missing")
	requireDomainError(t, err, domainerrors.CodeNotFound, "Genre's not found.")

	strengths, err = env.profiles.RemoveStrength(ctx, u.ID, fantasy.ID)
	require.NoError(t, err)
	assert.Empty(t, strengths)

	_, err = env.profiles.RemoveStrength(ctx, u.ID, fantasy.ID)
	requireDomainError(t, err, domainerrors.CodeNotFound, "Strength's not found.")
}
