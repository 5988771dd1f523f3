package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/id"
	"github.com/vivilio/vivilio-server/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"), slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func mkUser(t *testing.T, s *Store, email string) *domain.User {
	t.Helper()
	u := &domain.User{
		Entity:       domain.Entity{ID: id.MustGenerate(id.User)},
		Email:        email,
		PasswordHash: "$argon2id$test",
		Name:         "User " + email,
		MemberSince:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	u.InitTimestamps()
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func mkBook(t *testing.T, s *Store, author *domain.User, title string) *domain.Book {
	t.Helper()
	ctx := context.Background()
	b := &domain.Book{
		Entity:      domain.Entity{ID: id.MustGenerate(id.Book)},
		Title:       title,
		Description: "About " + title,
		Cover:       "/api/images/cover.png",
	}
	b.InitTimestamps()
	require.NoError(t, s.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateBook(ctx, b); err != nil {
			return err
		}
		return tx.CreatePublish(ctx, &domain.Publish{UserID: author.ID, BookID: b.ID})
	}))
	return b
}

func mkCommunity(t *testing.T, s *Store, name string) *domain.Community {
	t.Helper()
	c := &domain.Community{
		Entity:      domain.Entity{ID: id.MustGenerate(id.Community)},
		Name:        name,
		Description: "A community",
		Visibility:  domain.Visibility{ID: "vis-public"},
		Category:    domain.Category{ID: "cat-fiction"},
	}
	c.InitTimestamps()
	require.NoError(t, s.CreateCommunity(context.Background(), c))
	return c
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	require.NoError(t, s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode))
	assert.Equal(t, "wal", journalMode)

	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)

	tables := []string{
		"users", "genres", "roles", "visibilities", "categories", "strengths",
		"books", "publishes", "book_genres", "reviews",
		"communities", "memberships", "posts", "comments",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s", table)
	}
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	logger := slog.New(slog.DiscardHandler)

	s, err := Open(path, logger)
	require.NoError(t, err)
	mkUser(t, s, "ada@example.com")
	require.NoError(t, s.Close())

	s2, err := Open(path, logger)
	require.NoError(t, err)
	defer s2.Close()

	_, err = s2.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)

	genres, err := s2.ListGenres(context.Background())
	require.NoError(t, err)
	assert.Len(t, genres, 12)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mkUser(t, s, "author@example.com")

	boom := errors.New("boom")
	b := &domain.Book{Entity: domain.Entity{ID: id.MustGenerate(id.Book)}, Title: "Ghost"}
	b.InitTimestamps()

	err := s.WithTx(ctx, func(tx store.Store) error {
		require.NoError(t, tx.CreateBook(ctx, b))
		require.NoError(t, tx.CreatePublish(ctx, &domain.Publish{UserID: author.ID, BookID: b.ID}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestWithTx_Nested(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(outer store.Store) error {
		return outer.WithTx(ctx, func(inner store.Store) error {
			mkCommunityVia(t, inner, "Nested readers")
			return nil
		})
	})
	require.NoError(t, err)

	taken, err := s.CommunityNameTaken(ctx, "Nested readers")
	require.NoError(t, err)
	assert.True(t, taken)
}

func mkCommunityVia(t *testing.T, st store.Store, name string) {
	t.Helper()
	c := &domain.Community{
		Entity:     domain.Entity{ID: id.MustGenerate(id.Community)},
		Name:       name,
		Visibility: domain.Visibility{ID: "vis-private"},
		Category:   domain.Category{ID: "cat-other"},
	}
	c.InitTimestamps()
	require.NoError(t, st.CreateCommunity(context.Background(), c))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%dune%", likePattern("DUNE"))
	assert.Equal(t, `%100\%\_off%`, likePattern("100%_off"))
	assert.Equal(t, "%émile%", likePattern("ÉMILE"))
}

func TestSearch_FoldsUnicodeCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	author := mkUser(t, s, "Émile@example.com")
	mkBook(t, s, author, "Straße nach Süden")
	mkCommunity(t, s, "Ÿoung Élite Readers")

	users, err := s.SearchUsers(ctx, "émile", 0)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	for _, q := range []string{"STRASSE", "straße", "SÜDEN"} {
		books, err := s.SearchBooks(ctx, q, 0)
		require.NoError(t, err, q)
		assert.Len(t, books, 1, q)
	}

	communities, err := s.SearchCommunities(ctx, "ÿoung élite", 0)
	require.NoError(t, err)
	assert.Len(t, communities, 1)
}

func TestLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	role, err := s.GetRoleByType(ctx, "Moderator")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, role.Type)

	_, err = s.GetRoleByType(ctx, "moderator")
	assert.ErrorIs(t, err, store.ErrNotFound)

	vis, err := s.GetVisibilityByType(ctx, "Private")
	require.NoError(t, err)
	assert.Equal(t, "vis-private", vis.ID)

	cat, err := s.GetCategoryByType(ctx, "Non-Fiction")
	require.NoError(t, err)
	assert.Equal(t, "cat-non-fiction", cat.ID)

	cats, err := s.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 6)

	vises, err := s.ListVisibilities(ctx)
	require.NoError(t, err)
	assert.Len(t, vises, 2)
}
