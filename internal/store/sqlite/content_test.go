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

func mkPost(t *testing.T, s *Store, c *domain.Community, author *domain.User, content string) *domain.Post {
	t.Helper()
	p := &domain.Post{
		Entity:      domain.Entity{ID: id.MustGenerate(id.Post)},
		Content:     content,
		AuthorID:    author.ID,
		CommunityID: c.ID,
	}
	p.InitTimestamps()
	require.NoError(t, s.CreatePost(context.Background(), p))
	return p
}

func mkComment(t *testing.T, s *Store, p *domain.Post, u *domain.User, content string) *domain.Comment {
	t.Helper()
	c := &domain.Comment{
		Entity:  domain.Entity{ID: id.MustGenerate(id.Comment)},
		UserID:  u.ID,
		PostID:  p.ID,
		Content: content,
	}
	c.InitTimestamps()
	require.NoError(t, s.CreateComment(context.Background(), c))
	return c
}

func TestPosts_ScopedToCommunity(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mkUser(t, s, "ada@example.com")
	guild := mkCommunity(t, s, "Readers Guild")
	other := mkCommunity(t, s, "Other place")
	p := mkPost(t, s, guild, u, "hello")

	_, err := s.GetPost(ctx, other.ID, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetPost(ctx, guild.ID, p.ID)
	require.NoError(t, err)
	got.Content = "edited"
	got.TurnOffCommenting = true
	require.NoError(t, s.UpdatePost(ctx, got))

	posts, err := s.ListPosts(ctx, guild.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "edited", posts[0].Content)
	assert.True(t, posts[0].TurnOffCommenting)
}

func TestPosts_ListOldestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mkUser(t, s, "ada@example.com")
	guild := mkCommunity(t, s, "Readers Guild")

	// .1s and .12s compare the wrong way round if fractions are trimmed.
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	at := []time.Duration{100 * time.Millisecond, 120 * time.Millisecond, 120 * time.Millisecond, time.Second}
	var want []string
	for i, offset := range at {
		p := &domain.Post{
			Entity:      domain.Entity{ID: id.MustGenerate(id.Post), CreatedAt: base.Add(offset), UpdatedAt: base.Add(offset)},
			Content:     "post",
			AuthorID:    u.ID,
			CommunityID: guild.ID,
		}
		require.NoError(t, s.CreatePost(ctx, p), "post %d", i)
		want = append(want, p.ID)
	}

	posts, err := s.ListPosts(ctx, guild.ID)
	require.NoError(t, err)
	got := make([]string, 0, len(posts))
	for _, p := range posts {
		got = append(got, p.ID)
	}
	assert.Equal(t, want, got)
	assert.True(t, posts[0].CreatedAt.Equal(base.Add(100*time.Millisecond)))
}

func TestPosts_DeleteRemovesComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mkUser(t, s, "ada@example.com")
	guild := mkCommunity(t, s, "Readers Guild")
	p := mkPost(t, s, guild, u, "hello")
	mkComment(t, s, p, u, "one")
	mkComment(t, s, p, u, "two")

	err := s.WithTx(ctx, func(tx store.Store) error {
		n, err := tx.DeleteCommentsByPost(ctx, p.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, 2, n)
		return tx.DeletePost(ctx, p.ID)
	})
	require.NoError(t, err)

	comments, err := s.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
	assert.ErrorIs(t, s.DeletePost(ctx, p.ID), store.ErrNotFound)
}

func TestPosts_FKCascadeRemovesComments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mkUser(t, s, "ada@example.com")
	guild := mkCommunity(t, s, "Readers Guild")
	p := mkPost(t, s, guild, u, "hello")
	c := mkComment(t, s, p, u, "one")

	require.NoError(t, s.DeletePost(ctx, p.ID))

	_, err := s.GetComment(ctx, p.ID, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestComments_ScopedToPost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mkUser(t, s, "ada@example.com")
	guild := mkCommunity(t, s, "Readers Guild")
	first := mkPost(t, s, guild, u, "first")
	second := mkPost(t, s, guild, u, "second")
	c := mkComment(t, s, first, u, "reply")

	_, err := s.GetComment(ctx, second.ID, c.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.GetComment(ctx, first.ID, c.ID)
	require.NoError(t, err)
	got.Content = "edited reply"
	require.NoError(t, s.UpdateComment(ctx, got))

	list, err := s.ListComments(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "edited reply", list[0].Content)

	require.NoError(t, s.DeleteComment(ctx, c.ID))
	assert.ErrorIs(t, s.DeleteComment(ctx, c.ID), store.ErrNotFound)
}
