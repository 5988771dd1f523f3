package service

import (
	"context"
	"fmt"

	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/id"
	"github.com/vivilio/vivilio-server/internal/normalize"
	"github.com/vivilio/vivilio-server/internal/store"
)

// ContentService manages community posts and their comments. Every
// operation resolves the community first, then the post within it, then
// the comment within the post.
type ContentService struct {
	Deps
}

// NewContentService creates a content service.
func NewContentService(deps Deps) *ContentService {
	return &ContentService{Deps: deps.withDefaults()}
}

// PostRequest is the field table of createPost and editPost.
type PostRequest struct {
	Content           string `json:"content,omitempty" validate:"required" msg:"Content must be text."`
	TurnOffCommenting *bool  `json:"turn_off_commenting,omitempty" validate:"required" msg:"Commenting option must be a boolean."`
}

// CommentRequest is the field table of addComment and editComment.
type CommentRequest struct {
	Content string `json:"content,omitempty" validate:"required" msg:"Comment content must be text."`
}

// CreatePost adds a post by authorID to a community.
func (s *ContentService) CreatePost(ctx context.Context, communityID, authorID string, req PostRequest) (*domain.Post, error) {
	post, err := s.createPost(ctx, communityID, authorID, req)
	return post, s.observe("create_post", err)
}

func (s *ContentService) createPost(ctx context.Context, communityID, authorID string, req PostRequest) (*domain.Post, error) {
	req.Content = normalize.Text(req.Content)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.Store.GetCommunity(ctx, communityID); err != nil {
		return nil, notFound(err, msgCommunityMissing)
	}

	postID, err := id.Generate(id.Post)
	if err != nil {
		return nil, fmt.Errorf("generate post ID: %w", err)
	}
	post := &domain.Post{
		Entity:            domain.Entity{ID: postID},
		Content:           req.Content,
		TurnOffCommenting: *req.TurnOffCommenting,
		AuthorID:          authorID,
		CommunityID:       communityID,
	}
	post.InitTimestamps()

	if err := s.Store.CreatePost(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.Logger.Info("post created", "post_id", post.ID, "community_id", communityID, "user_id", authorID)
	return post, nil
}

// ListPosts returns the posts of a community, oldest first.
func (s *ContentService) ListPosts(ctx context.Context, communityID string) ([]*domain.Post, error) {
	if _, err := s.Store.GetCommunity(ctx, communityID); err != nil {
		return nil, notFound(err, msgCommunityMissing)
	}
	return s.Store.ListPosts(ctx, communityID)
}

// EditPost rewrites a post. Authorship is not checked.
func (s *ContentService) EditPost(ctx context.Context, communityID, postID string, req PostRequest) (*domain.Post, error) {
	post, err := s.editPost(ctx, communityID, postID, req)
	return post, s.observe("edit_post", err)
}

func (s *ContentService) editPost(ctx context.Context, communityID, postID string, req PostRequest) (*domain.Post, error) {
	req.Content = normalize.Text(req.Content)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.resolvePost(ctx, communityID, postID)
	if err != nil {
		return nil, err
	}

	post.Content = req.Content
	post.TurnOffCommenting = *req.TurnOffCommenting
	post.Touch()

	if err := s.Store.UpdatePost(ctx, post); err != nil {
		return nil, notFound(err, msgPostNotFound)
	}

	s.Logger.Info("post edited", "post_id", postID, "community_id", communityID)
	return post, nil
}

// DeletePost removes a post and all its comments in one transaction and
// returns the community's remaining posts.
func (s *ContentService) DeletePost(ctx context.Context, communityID, postID string) ([]*domain.Post, error) {
	posts, err := s.deletePost(ctx, communityID, postID)
	return posts, s.observe("delete_post", err)
}

func (s *ContentService) deletePost(ctx context.Context, communityID, postID string) ([]*domain.Post, error) {
	if _, err := s.resolvePost(ctx, communityID, postID); err != nil {
		return nil, err
	}

	var removed int
	err := s.Store.WithTx(ctx, func(tx store.Store) error {
		var err error
		if removed, err = tx.DeleteCommentsByPost(ctx, postID); err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		if err := tx.DeletePost(ctx, postID); err != nil {
			return notFound(err, msgPostNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("post deleted", "post_id", postID, "community_id", communityID, "comments_removed", removed)
	return s.Store.ListPosts(ctx, communityID)
}

// AddComment adds a comment by authorID to a post. Posts with commenting
// turned off reject new comments.
func (s *ContentService) AddComment(ctx context.Context, communityID, postID, authorID string, req CommentRequest) (*domain.Comment, error) {
	comment, err := s.addComment(ctx, communityID, postID, authorID, req)
	return comment, s.observe("add_comment", err)
}

func (s *ContentService) addComment(ctx context.Context, communityID, postID, authorID string, req CommentRequest) (*domain.Comment, error) {
	req.Content = normalize.Text(req.Content)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	post, err := s.resolvePost(ctx, communityID, postID)
	if err != nil {
		return nil, err
	}
	if !post.AcceptsComments() {
		return nil, domainerrors.Forbidden(msgCommentingClosed)
	}

	commentID, err := id.Generate(id.Comment)
	if err != nil {
		return nil, fmt.Errorf("generate comment ID: %w", err)
	}
	comment := &domain.Comment{
		Entity:  domain.Entity{ID: commentID},
		UserID:  authorID,
		PostID:  postID,
		Content: req.Content,
	}
	comment.InitTimestamps()

	if err := s.Store.CreateComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	s.Logger.Info("comment added", "comment_id", comment.ID, "post_id", postID, "user_id", authorID)
	return comment, nil
}

// ListComments returns the comments of a post.
func (s *ContentService) ListComments(ctx context.Context, communityID, postID string) ([]*domain.Comment, error) {
	if _, err := s.resolvePost(ctx, communityID, postID); err != nil {
		return nil, err
	}
	return s.Store.ListComments(ctx, postID)
}

// EditComment rewrites a comment. Authorship is not checked.
func (s *ContentService) EditComment(ctx context.Context, communityID, postID, commentID string, req CommentRequest) (*domain.Comment, error) {
	comment, err := s.editComment(ctx, communityID, postID, commentID, req)
	return comment, s.observe("edit_comment", err)
}

func (s *ContentService) editComment(ctx context.Context, communityID, postID, commentID string, req CommentRequest) (*domain.Comment, error) {
	req.Content = normalize.Text(req.Content)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	comment, err := s.resolveComment(ctx, communityID, postID, commentID)
	if err != nil {
		return nil, err
	}

	comment.Content = req.Content
	comment.Touch()
	if err := s.Store.UpdateComment(ctx, comment); err != nil {
		return nil, notFound(err, msgCommentNotFound)
	}

	s.Logger.Info("comment edited", "comment_id", commentID, "post_id", postID)
	return comment, nil
}

// DeleteComment removes a comment and returns the post's remaining comments.
func (s *ContentService) DeleteComment(ctx context.Context, communityID, postID, commentID string) ([]*domain.Comment, error) {
	comments, err := s.deleteComment(ctx, communityID, postID, commentID)
	return comments, s.observe("delete_comment", err)
}

func (s *ContentService) deleteComment(ctx context.Context, communityID, postID, commentID string) ([]*domain.Comment, error) {
	if _, err := s.resolveComment(ctx, communityID, postID, commentID); err != nil {
		return nil, err
	}
	if err := s.Store.DeleteComment(ctx, commentID); err != nil {
		return nil, notFound(err, msgCommentNotFound)
	}

	s.Logger.Info("comment deleted", "comment_id", commentID, "post_id", postID)
	return s.Store.ListComments(ctx, postID)
}

func (s *ContentService) resolvePost(ctx context.Context, communityID, postID string) (*domain.Post, error) {
	if _, err := s.Store.GetCommunity(ctx, communityID); err != nil {
		return nil, notFound(err, msgCommunityMissing)
	}
	post, err := s.Store.GetPost(ctx, communityID, postID)
	if err != nil {
		return nil, notFound(err, msgPostNotFound)
	}
	return post, nil
}

func (s *ContentService) resolveComment(ctx context.Context, communityID, postID, commentID string) (*domain.Comment, error) {
	if _, err := s.resolvePost(ctx, communityID, postID); err != nil {
		return nil, err
	}
	comment, err := s.Store.GetComment(ctx, postID, commentID)
	if err != nil {
		return nil, notFound(err, msgCommentNotFound)
	}
	return comment, nil
}
