package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/id"
	"github.com/vivilio/vivilio-server/internal/store"
)

func mkReview(t *testing.T, s *Store, book *domain.Book, user *domain.User, star int) *domain.Review {
	t.Helper()
	r := &domain.Review{
		Entity:   domain.Entity{ID: id.MustGenerate(id.Review)},
		UserID:   user.ID,
		BookID:   book.ID,
		Overview: "Overview",
		Content:  "Content",
		Star:     star,
		Started:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Finished: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC),
	}
	r.InitTimestamps()
	require.NoError(t, s.CreateReview(context.Background(), r))
	return r
}

func TestBooks_CRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mkUser(t, s, "author@example.com")
	b := mkBook(t, s, author, "Dune")

	got, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	pub, err := s.GetPublish(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, author.ID, pub.UserID)

	got.Title = "Dune Messiah"
	got.CoverBlurHash = "LEHV6nWB2yk8"
	got.Touch()
	require.NoError(t, s.UpdateBook(ctx, got))

	again, err := s.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", again.Title)
	assert.Equal(t, "LEHV6nWB2yk8", again.CoverBlurHash)

	byAuthor, err := s.ListBooksByAuthor(ctx, author.ID)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)

	found, err := s.SearchBooks(ctx, "messiah", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)
}

func TestBooks_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mkUser(t, s, "author@example.com")
	reader := mkUser(t, s, "reader@example.com")
	b := mkBook(t, s, author, "Dune")
	mkReview(t, s, b, reader, 5)
	require.NoError(t, s.AttachGenre(ctx, b.ID, "gen-classics"))

	require.NoError(t, s.DeletePublish(ctx, b.ID))
	require.NoError(t, s.DeleteBook(ctx, b.ID))

	reviews, err := s.ListReviews(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	genres, err := s.ListBookGenres(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, genres)

	assert.ErrorIs(t, s.DeleteBook(ctx, b.ID), store.ErrNotFound)
	_, err = s.GetPublish(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReviews_ScopedToBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mkUser(t, s, "author@example.com")
	reader := mkUser(t, s, "reader@example.com")
	dune := mkBook(t, s, author, "Dune")
	emma := mkBook(t, s, author, "Emma")
	r := mkReview(t, s, dune, reader, 4)

	got, err := s.GetReview(ctx, dune.ID, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Star)
	assert.Equal(t, "2024-01-09", domain.FormatDate(got.Finished))

	_, err = s.GetReview(ctx, emma.ID, r.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteReview(ctx, emma.ID, r.ID), store.ErrNotFound)

	got.Star = 2
	got.Overview = "Changed my mind"
	require.NoError(t, s.UpdateReview(ctx, got))

	list, err := s.ListReviews(ctx, dune.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2, list[0].Star)

	require.NoError(t, s.DeleteReview(ctx, dune.ID, r.ID))
	assert.ErrorIs(t, s.DeleteReview(ctx, dune.ID, r.ID), store.ErrNotFound)
}
