package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/service"
)

func (s *Server) registerContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listPosts",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/{id}/posts",
		Summary:     "List posts",
		Tags:        []string{"Posts"},
		Security:    bearerSecurity,
	}, s.handleListPosts)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPost",
		Method:        http.MethodPost,
		Path:          "/api/v1/communities/{id}/posts",
		Summary:       "Create post",
		Tags:          []string{"Posts"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "editPost",
		Method:      http.MethodPut,
		Path:        "/api/v1/communities/{id}/posts/{post_id}",
		Summary:     "Edit post",
		Tags:        []string{"Posts"},
		Security:    bearerSecurity,
	}, s.handleEditPost)

	huma.Register(s.api, huma.Operation{
		OperationID: "deletePost",
		Method:      http.MethodDelete,
		Path:        "/api/v1/communities/{id}/posts/{post_id}",
		Summary:     "Delete post",
		Description: "Deletes a post with its comments and returns the community's remaining posts",
		Tags:        []string{"Posts"},
		Security:    bearerSecurity,
	}, s.handleDeletePost)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/communities/{id}/posts/{post_id}/comments",
		Summary:     "List comments",
		Tags:        []string{"Comments"},
		Security:    bearerSecurity,
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addComment",
		Method:        http.MethodPost,
		Path:          "/api/v1/communities/{id}/posts/{post_id}/comments",
		Summary:       "Add comment",
		Description:   "Comments on a post unless commenting is turned off",
		Tags:          []string{"Comments"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "editComment",
		Method:      http.MethodPut,
		Path:        "/api/v1/communities/{id}/posts/{post_id}/comments/{comment_id}",
		Summary:     "Edit comment",
		Tags:        []string{"Comments"},
		Security:    bearerSecurity,
	}, s.handleEditComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/communities/{id}/posts/{post_id}/comments/{comment_id}",
		Summary:     "Delete comment",
		Description: "Deletes a comment and returns the post's remaining comments",
		Tags:        []string{"Comments"},
		Security:    bearerSecurity,
	}, s.handleDeleteComment)
}

// CreatePostInput is the request for createPost.
type CreatePostInput struct {
	ID   string `path:"id" doc:"Community ID"`
	Body service.PostRequest
}

// PostIDInput identifies a post in a community.
type PostIDInput struct {
	ID     string `path:"id" doc:"Community ID"`
	PostID string `path:"post_id" doc:"Post ID"`
}

// EditPostInput is the request for editPost.
type EditPostInput struct {
	ID     string `path:"id" doc:"Community ID"`
	PostID string `path:"post_id" doc:"Post ID"`
	Body   service.PostRequest
}

// AddCommentInput is the request for addComment.
type AddCommentInput struct {
	ID     string `path:"id" doc:"Community ID"`
	PostID string `path:"post_id" doc:"Post ID"`
	Body   service.CommentRequest
}

// CommentIDInput identifies a comment on a post.
type CommentIDInput struct {
	ID        string `path:"id" doc:"Community ID"`
	PostID    string `path:"post_id" doc:"Post ID"`
	CommentID string `path:"comment_id" doc:"Comment ID"`
}

// EditCommentInput is the request for editComment.
type EditCommentInput struct {
	ID        string `path:"id" doc:"Community ID"`
	PostID    string `path:"post_id" doc:"Post ID"`
	CommentID string `path:"comment_id" doc:"Comment ID"`
	Body      service.CommentRequest
}

// PostOutput wraps one post.
type PostOutput struct {
	Body *domain.Post
}

// PostsOutput wraps a list of posts.
type PostsOutput struct {
	Body []*domain.Post
}

// CommentOutput wraps one comment.
type CommentOutput struct {
	Body *domain.Comment
}

// CommentsOutput wraps a list of comments.
type CommentsOutput struct {
	Body []*domain.Comment
}

func (s *Server) handleListPosts(ctx context.Context, input *CommunityIDInput) (*PostsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	posts, err := s.services.Content.ListPosts(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &PostsOutput{Body: posts}, nil
}

func (s *Server) handleCreatePost(ctx context.Context, input *CreatePostInput) (*PostOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	post, err := s.services.Content.CreatePost(ctx, input.ID, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleEditPost(ctx context.Context, input *EditPostInput) (*PostOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	post, err := s.services.Content.EditPost(ctx, input.ID, input.PostID, input.Body)
	if err != nil {
		return nil, err
	}
	return &PostOutput{Body: post}, nil
}

func (s *Server) handleDeletePost(ctx context.Context, input *PostIDInput) (*PostsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	posts, err := s.services.Content.DeletePost(ctx, input.ID, input.PostID)
	if err != nil {
		return nil, err
	}
	return &PostsOutput{Body: posts}, nil
}

func (s *Server) handleListComments(ctx context.Context, input *PostIDInput) (*CommentsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	comments, err := s.services.Content.ListComments(ctx, input.ID, input.PostID)
	if err != nil {
		return nil, err
	}
	return &CommentsOutput{Body: comments}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	comment, err := s.services.Content.AddComment(ctx, input.ID, input.PostID, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleEditComment(ctx context.Context, input *EditCommentInput) (*CommentOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	comment, err := s.services.Content.EditComment(ctx, input.ID, input.PostID, input.CommentID, input.Body)
	if err != nil {
		return nil, err
	}
	return &CommentOutput{Body: comment}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentIDInput) (*CommentsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	comments, err := s.services.Content.DeleteComment(ctx, input.ID, input.PostID, input.CommentID)
	if err != nil {
		return nil, err
	}
	return &CommentsOutput{Body: comments}, nil
}
