package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivilio/vivilio-server/internal/store"
)

func TestGenres_Lookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	g, err := s.GetGenreByType(ctx, "Science Fiction")
	require.NoError(t, err)
	assert.Equal(t, "gen-science-fiction", g.ID)

	byID, err := s.GetGenre(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", byID.Type)

	_, err = s.GetGenreByType(ctx, "science fiction")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStrengths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mkUser(t, s, "ada@example.com")

	require.NoError(t, s.AddStrength(ctx, u.ID, "gen-fantasy"))
	require.NoError(t, s.AddStrength(ctx, u.ID, "gen-horror"))
	assert.ErrorIs(t, s.AddStrength(ctx, u.ID, "gen-fantasy"), store.ErrAlreadyExists)
	assert.ErrorIs(t, s.AddStrength(ctx, u.ID, "gen-nope"), store.ErrReferenceMissing)

	got, err := s.ListStrengths(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.NoError(t, s.RemoveStrength(ctx, u.ID, "gen-fantasy"))
	assert.ErrorIs(t, s.RemoveStrength(ctx, u.ID, "gen-fantasy"), store.ErrNotFound)

	got, err = s.ListStrengths(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Horror", got[0].Type)
}

func TestBookGenres(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mkUser(t, s, "author@example.com")
	b := mkBook(t, s, author, "Dune")

	require.NoError(t, s.AttachGenre(ctx, b.ID, "gen-science-fiction"))
	require.NoError(t, s.AttachGenre(ctx, b.ID, "gen-classics"))
	assert.ErrorIs(t, s.AttachGenre(ctx, b.ID, "gen-classics"), store.ErrAlreadyExists)

	got, err := s.ListBookGenres(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Classics", got[0].Type)

	require.NoError(t, s.DetachGenre(ctx, b.ID, "gen-classics"))
	assert.ErrorIs(t, s.DetachGenre(ctx, b.ID, "gen-classics"), store.ErrNotFound)
}
