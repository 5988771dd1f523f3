package sqlite

import (
	"context"
	"time"

	"github.com/vivilio/vivilio-server/internal/domain"
)

func scanGenre(row scanner) (*domain.Genre, error) {
	var g domain.Genre
	if err := row.Scan(&g.ID, &g.Type); err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGenres returns the genre lookup table ordered by label.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return queryAll(ctx, s, scanGenre, `SELECT id, type FROM genres ORDER BY type`)
}

// GetGenre retrieves a genre by ID.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	g, err := scanGenre(s.q.QueryRowContext(ctx, `SELECT id, type FROM genres WHERE id = ?`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

// GetGenreByType retrieves a genre by its exact label.
func (s *Store) GetGenreByType(ctx context.Context, label string) (*domain.Genre, error) {
	g, err := scanGenre(s.q.QueryRowContext(ctx, `SELECT id, type FROM genres WHERE type = ?`, label))
	if err != nil {
		return nil, mapError(err)
	}
	return g, nil
}

// ListStrengths returns the genres a user has declared, oldest first.
func (s *Store) ListStrengths(ctx context.Context, userID string) ([]*domain.Genre, error) {
	return queryAll(ctx, s, scanGenre, `
		SELECT g.id, g.type
		FROM strengths st
		JOIN genres g ON g.id = st.genre_id
		WHERE st.user_id = ?
		ORDER BY st.created_at, g.type`, userID)
}

// AddStrength records a user's strength in a genre.
func (s *Store) AddStrength(ctx context.Context, userID, genreID string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO strengths (user_id, genre_id, created_at) VALUES (?, ?, ?)`,
		userID, genreID, formatTime(time.Now()))
	return mapError(err)
}

// RemoveStrength deletes a strength. Returns store.ErrNotFound if absent.
func (s *Store) RemoveStrength(ctx context.Context, userID, genreID string) error {
	return s.execAffecting(ctx,
		`DELETE FROM strengths WHERE user_id = ? AND genre_id = ?`, userID, genreID)
}

// ListBookGenres returns the genres attached to a book ordered by label.
func (s *Store) ListBookGenres(ctx context.Context, bookID string) ([]*domain.Genre, error) {
	return queryAll(ctx, s, scanGenre, `
		SELECT g.id, g.type
		FROM book_genres bg
		JOIN genres g ON g.id = bg.genre_id
		WHERE bg.book_id = ?
		ORDER BY g.type`, bookID)
}

// AttachGenre links a genre to a book.
func (s *Store) AttachGenre(ctx context.Context, bookID, genreID string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO book_genres (book_id, genre_id) VALUES (?, ?)`, bookID, genreID)
	return mapError(err)
}

// DetachGenre removes a book-genre link. Returns store.ErrNotFound if absent.
func (s *Store) DetachGenre(ctx context.Context, bookID, genreID string) error {
	return s.execAffecting(ctx,
		`DELETE FROM book_genres WHERE book_id = ? AND genre_id = ?`, bookID, genreID)
}
