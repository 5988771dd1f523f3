package sqlite

import (
	"context"
	"fmt"

	"github.com/vivilio/vivilio-server/internal/domain"
)

// reviewColumns must match the scan order in scanReview.
const reviewColumns = `id, created_at, updated_at, user_id, book_id, overview, content, star, started, finished`

func scanReview(row scanner) (*domain.Review, error) {
	var (
		r                                     domain.Review
		createdAt, updatedAt, started, finish string
	)
	err := row.Scan(&r.ID, &createdAt, &updatedAt, &r.UserID, &r.BookID,
		&r.Overview, &r.Content, &r.Star, &started, &finish)
	if err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if r.Started, err = parseDate(started); err != nil {
		return nil, fmt.Errorf("parse started: %w", err)
	}
	if r.Finished, err = parseDate(finish); err != nil {
		return nil, fmt.Errorf("parse finished: %w", err)
	}
	return &r, nil
}

// CreateReview inserts a review.
func (s *Store) CreateReview(ctx context.Context, r *domain.Review) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO reviews (`+reviewColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, formatTime(r.CreatedAt), formatTime(r.UpdatedAt), r.UserID, r.BookID,
		r.Overview, r.Content, r.Star, formatDate(r.Started), formatDate(r.Finished))
	return mapError(err)
}

// GetReview retrieves a review belonging to bookID.
func (s *Store) GetReview(ctx context.Context, bookID, reviewID string) (*domain.Review, error) {
	r, err := scanReview(s.q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ? AND book_id = ?`, reviewID, bookID))
	if err != nil {
		return nil, mapError(err)
	}
	return r, nil
}

// ListReviews returns a book's reviews, oldest first.
func (s *Store) ListReviews(ctx context.Context, bookID string) ([]*domain.Review, error) {
	return queryAll(ctx, s, scanReview,
		`SELECT `+reviewColumns+` FROM reviews WHERE book_id = ? ORDER BY created_at, rowid`, bookID)
}

// UpdateReview overwrites the mutable fields of a review.
func (s *Store) UpdateReview(ctx context.Context, r *domain.Review) error {
	return s.execAffecting(ctx, `
		UPDATE reviews
		SET updated_at = ?, overview = ?, content = ?, star = ?, started = ?, finished = ?
		WHERE id = ? AND book_id = ?`,
		formatTime(r.UpdatedAt), r.Overview, r.Content, r.Star,
		formatDate(r.Started), formatDate(r.Finished), r.ID, r.BookID)
}

// DeleteReview removes a review belonging to bookID.
func (s *Store) DeleteReview(ctx context.Context, bookID, reviewID string) error {
	return s.execAffecting(ctx, `DELETE FROM reviews WHERE id = ? AND book_id = ?`, reviewID, bookID)
}
