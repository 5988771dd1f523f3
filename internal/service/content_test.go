package service

import (
	"context"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
)

func (e *testEnv) post(t *testing.T, communityID string, author *domain.User, content string, closed bool) *domain.Post {
	t.Helper()
	p, err := e.content.CreatePost(context.Background(), communityID, author.ID, PostRequest{
		Content:           content,
		TurnOffCommenting: lo.ToPtr(closed),
	})
	require.NoError(t, err)
	return p
}

func TestPosts(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	ann := env.register(t, "ann@example.com", "Ann")
	club := env.community(t, ann, "Readers Club")

	_, err := env.content.CreatePost(ctx, club.ID, ann.ID, PostRequest{Content: "  ", TurnOffCommenting: lo.ToPtr(false)})
	requireInvalidField(t, err, "content", "Content must be text.")

	_, err = env.content.CreatePost(ctx, club.ID, ann.ID, PostRequest{Content: "Hello"})
	requireInvalidField(t, err, "turn_off_commenting", "Commenting option must be a boolean.")

	_, err = env.content.CreatePost(ctx, "com-missing", ann.ID, PostRequest{Content: "Hello", TurnOffCommenting: lo.ToPtr(false)})
	requireDomainError(t, err, domainerrors.CodeNotFound, "Commnunity's not found.")

	first := env.post(t, club.ID, ann, "First!", false)
	second := env.post(t, club.ID, ann, "Second.", false)

	edited, err := env.content.EditPost(ctx, club.ID, first.ID, PostRequest{Content: "First, edited.", TurnOffCommenting: lo.ToPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, "First, edited.", edited.Content)
	assert.True(t, edited.TurnOffCommenting)

	posts, err := env.content.ListPosts(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, second.ID}, lo.Map(posts, func(p *domain.Post, _ int) string { return p.ID }))

	remaining, err := env.content.DeletePost(ctx, club.ID, first.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)

	_, err = env.content.DeletePost(ctx, club.ID, first.ID)
	requireDomainError(t, err, domainerrors.CodeNotFound, "Post's not found.")
}

func TestPostScopedToCommunity(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	ann := env.register(t, "ann@example.com", "Ann")
	club := env.community(t, ann, "Readers Club")
	owls := env.community(t, ann, "Night Owls")
	p := env.post(t, club.ID, ann, "Only here.", false)

	_, err := env.content.EditPost(ctx, owls.ID, p.ID, PostRequest{Content: "Moved?", TurnOffCommenting: lo.ToPtr(false)})
	requireDomainError(t, err, domainerrors.CodeNotFound, "Post's not found.")

	_, err = env.content.ListComments(ctx, owls.ID, p.ID)
	requireDomainError(t, err, domainerrors.CodeNotFound, "Post's not found.")
}

func TestDeletePost_RemovesComments(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	ann := env.register(t, "ann@example.com", "Ann")
	bo := env.register(t, "bo@example.com", "Bo")
	club := env.community(t, ann, "Readers Club")
	p := env.post(t, club.ID, ann, "Thoughts on chapter one?", false)

	for _, text := range []string{"Loved it.", "Too slow.", "The ending!"} {
		_, err := env.content.AddComment(ctx, club.ID, p.ID, bo.ID, CommentRequest{Content: text})
		require.NoError(t, err)
	}
	comments, err := env.content.ListComments(ctx, club.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 3)

	_, err = env.content.DeletePost(ctx, club.ID, p.ID)
	require.NoError(t, err)

	comments, err = env.store.ListComments(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestComments(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	ann := env.register(t, "ann@example.com", "Ann")
	bo := env.register(t, "bo@example.com", "Bo")
	club := env.community(t, ann, "Readers Club")
	open := env.post(t, club.ID, ann, "Open thread", false)
	closed := env.post(t, club.ID, ann, "Announcement", true)

	_, err := env.content.AddComment(ctx, club.ID, closed.ID, bo.ID, CommentRequest{Content: "Hi"})
	requireDomainError(t, err, domainerrors.CodeForbidden, "Commenting is turned off for this post.")

	_, err = env.content.AddComment(ctx, club.ID, open.ID, bo.ID, CommentRequest{Content: ""})
	requireInvalidField(t, err, "content", "Comment content must be text.")

	c, err := env.content.AddComment(ctx, club.ID, open.ID, bo.ID, CommentRequest{Content: "First comment"})
	require.NoError(t, err)
	assert.Equal(t, bo.ID, c.UserID)

	// Any user may edit a comment; authorship is not checked.
	edited, err := env.content.EditComment(ctx, club.ID, open.ID, c.ID, CommentRequest{Content: "Edited by Ann"})
	require.NoError(t, err)
	assert.Equal(t, "Edited by Ann", edited.Content)

	_, err = env.content.EditComment(ctx, club.ID, closed.ID, c.ID, CommentRequest{Content: "Wrong post"})
	requireDomainError(t, err, domainerrors.CodeNotFound, "Comment's not found.")

	second, err := env.content.AddComment(ctx, club.ID, open.ID, ann.ID, CommentRequest{Content: "Second"})
	require.NoError(t, err)

	remaining, err := env.content.DeleteComment(ctx, club.ID, open.ID, c.ID)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, second.ID, remaining[0].ID)

	_, err = env.content.DeleteComment(ctx, club.ID, open.ID, c.ID)
	requireDomainError(t, err, domainerrors.CodeNotFound, "Comment's not found.")
}
