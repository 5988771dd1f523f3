package sqlite

import (
	"context"

	"github.com/vivilio/vivilio-server/internal/domain"
)

const postColumns = `id, created_at, updated_at, content, turn_off_commenting, author_id, community_id`

func scanPost(row scanner) (*domain.Post, error) {
	var (
		p                    domain.Post
		createdAt, updatedAt string
		turnOff              int
	)
	err := row.Scan(&p.ID, &createdAt, &updatedAt, &p.Content, &turnOff, &p.AuthorID, &p.CommunityID)
	if err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.TurnOffCommenting = turnOff != 0
	return &p, nil
}

// CreatePost inserts a post.
func (s *Store) CreatePost(ctx context.Context, p *domain.Post) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, formatTime(p.CreatedAt), formatTime(p.UpdatedAt), p.Content,
		boolToInt(p.TurnOffCommenting), p.AuthorID, p.CommunityID)
	return mapError(err)
}

// GetPost retrieves a post belonging to communityID.
func (s *Store) GetPost(ctx context.Context, communityID, postID string) (*domain.Post, error) {
	p, err := scanPost(s.q.QueryRowContext(ctx,
		`SELECT `+postColumns+` FROM posts WHERE id = ? AND community_id = ?`, postID, communityID))
	if err != nil {
		return nil, mapError(err)
	}
	return p, nil
}

// ListPosts returns a community's posts in creation order, oldest first.
func (s *Store) ListPosts(ctx context.Context, communityID string) ([]*domain.Post, error) {
	return queryAll(ctx, s, scanPost,
		`SELECT `+postColumns+` FROM posts WHERE community_id = ? ORDER BY created_at, rowid`, communityID)
}

// UpdatePost overwrites the content and commenting flag of a post.
func (s *Store) UpdatePost(ctx context.Context, p *domain.Post) error {
	return s.execAffecting(ctx,
		`UPDATE posts SET updated_at = ?, content = ?, turn_off_commenting = ? WHERE id = ?`,
		formatTime(p.UpdatedAt), p.Content, boolToInt(p.TurnOffCommenting), p.ID)
}

// DeletePost removes a post. Its comments cascade.
func (s *Store) DeletePost(ctx context.Context, postID string) error {
	return s.execAffecting(ctx, `DELETE FROM posts WHERE id = ?`, postID)
}
