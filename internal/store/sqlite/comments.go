package sqlite

import (
	"context"

	"github.com/vivilio/vivilio-server/internal/domain"
)

const commentColumns = `id, created_at, updated_at, user_id, post_id, content`

func scanComment(row scanner) (*domain.Comment, error) {
	var (
		c                    domain.Comment
		createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &createdAt, &updatedAt, &c.UserID, &c.PostID, &c.Content); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateComment inserts a comment.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO comments (`+commentColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt), c.UserID, c.PostID, c.Content)
	return mapError(err)
}

// GetComment retrieves a comment belonging to postID.
func (s *Store) GetComment(ctx context.Context, postID, commentID string) (*domain.Comment, error) {
	c, err := scanComment(s.q.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = ? AND post_id = ?`, commentID, postID))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// ListComments returns a post's comments, oldest first.
func (s *Store) ListComments(ctx context.Context, postID string) ([]*domain.Comment, error) {
	return queryAll(ctx, s, scanComment,
		`SELECT `+commentColumns+` FROM comments WHERE post_id = ? ORDER BY created_at, rowid`, postID)
}

// UpdateComment overwrites the content of a comment.
func (s *Store) UpdateComment(ctx context.Context, c *domain.Comment) error {
	return s.execAffecting(ctx,
		`UPDATE comments SET updated_at = ?, content = ? WHERE id = ?`,
		formatTime(c.UpdatedAt), c.Content, c.ID)
}

// DeleteComment removes a comment.
func (s *Store) DeleteComment(ctx context.Context, commentID string) error {
	return s.execAffecting(ctx, `DELETE FROM comments WHERE id = ?`, commentID)
}

// DeleteCommentsByPost removes every comment of a post and returns how many
// were deleted.
func (s *Store) DeleteCommentsByPost(ctx context.Context, postID string) (int, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM comments WHERE post_id = ?`, postID)
	if err != nil {
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}
