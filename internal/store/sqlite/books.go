package sqlite

import (
	"context"
	"time"

	"github.com/vivilio/vivilio-server/internal/domain"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `b.id, b.created_at, b.updated_at, b.title, b.description, b.cover, b.cover_blurhash`

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b                    domain.Book
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &createdAt, &updatedAt, &b.Title, &b.Description, &b.Cover, &b.CoverBlurHash); err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBook inserts a book. Callers pair it with CreatePublish in one
// transaction so that no book exists without an author.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO books (id, created_at, updated_at, title, description, cover, cover_blurhash)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
		b.Title, b.Description, b.Cover, b.CoverBlurHash)
	return mapError(err)
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	b, err := scanBook(s.q.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books b WHERE b.id = ?`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return b, nil
}

// UpdateBook overwrites the mutable fields of a book.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	return s.execAffecting(ctx, `
		UPDATE books SET updated_at = ?, title = ?, description = ?, cover = ?, cover_blurhash = ?
		WHERE id = ?`,
		formatTime(b.UpdatedAt), b.Title, b.Description, b.Cover, b.CoverBlurHash, b.ID)
}

// DeleteBook removes a book; reviews, genre links and the publish record
// cascade.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	return s.execAffecting(ctx, `DELETE FROM books WHERE id = ?`, id)
}

// ListBooks returns every book ordered by title.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return queryAll(ctx, s, scanBook, `SELECT `+bookColumns+` FROM books b ORDER BY b.title, b.id`)
}

// ListBooksByAuthor returns the books a user has published, newest first.
func (s *Store) ListBooksByAuthor(ctx context.Context, userID string) ([]*domain.Book, error) {
	return queryAll(ctx, s, scanBook, `
		SELECT `+bookColumns+`
		FROM books b
		JOIN publishes p ON p.book_id = b.id
		WHERE p.user_id = ?
		ORDER BY b.created_at DESC, b.id`, userID)
}

// SearchBooks matches query against the title, ignoring case.
func (s *Store) SearchBooks(ctx context.Context, query string, limit int) ([]*domain.Book, error) {
	b := psql.Select(bookColumns).
		From("books b").
		Where(likeAny(likePattern(query), "b.title")).
		OrderBy("b.title", "b.id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return queryBuilt(ctx, s, b, scanBook)
}

// CreatePublish records the author of a book.
func (s *Store) CreatePublish(ctx context.Context, p *domain.Publish) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO publishes (book_id, user_id, created_at) VALUES (?, ?, ?)`,
		p.BookID, p.UserID, formatTime(time.Now()))
	return mapError(err)
}

// GetPublish returns the publish record of a book.
func (s *Store) GetPublish(ctx context.Context, bookID string) (*domain.Publish, error) {
	var p domain.Publish
	err := s.q.QueryRowContext(ctx,
		`SELECT book_id, user_id FROM publishes WHERE book_id = ?`, bookID).Scan(&p.BookID, &p.UserID)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

// DeletePublish removes the publish record of a book.
func (s *Store) DeletePublish(ctx context.Context, bookID string) error {
	return s.execAffecting(ctx, `DELETE FROM publishes WHERE book_id = ?`, bookID)
}
