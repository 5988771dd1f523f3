package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/normalize"
)

// userColumns must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, email, password_hash, name,
	member_since, bio, born, website, social_media, is_author`

func scanUser(row scanner) (*domain.User, error) {
	var (
		u                              domain.User
		createdAt, updatedAt, memberAt string
		isAuthor                       int
	)

	err := row.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&memberAt,
		&u.Bio,
		&u.Born,
		&u.Website,
		&u.SocialMedia,
		&isAuthor,
	)
	if err != nil {
		return nil, err
	}

	if err := parseTimestamps(createdAt, updatedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if u.MemberSince, err = parseDate(memberAt); err != nil {
		return nil, fmt.Errorf("parse member_since: %w", err)
	}
	u.IsAuthor = isAuthor != 0

	return &u, nil
}

// CreateUser inserts a new user. Emails are unique ignoring case.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, email, email_lower, password_hash, name,
			member_since, bio, born, website, social_media, is_author
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		u.Email,
		normalize.Email(u.Email),
		u.PasswordHash,
		u.Name,
		formatDate(u.MemberSince),
		u.Bio,
		u.Born,
		u.Website,
		u.SocialMedia,
		boolToInt(u.IsAuthor),
	)
	return mapError(err)
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_lower = ?`, normalize.Email(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

// UpdateUserProfile writes only the fields set in update and returns the
// updated user.
func (s *Store) UpdateUserProfile(ctx context.Context, id string, update domain.ProfileUpdate) (*domain.User, error) {
	if update.IsEmpty() {
		return s.GetUser(ctx, id)
	}

	b := psql.Update("users").
		Set("updated_at", formatTime(time.Now())).
		Where("id = ?", id)

	if update.Name != nil {
		b = b.Set("name", *update.Name)
	}
	if update.Bio != nil {
		b = b.Set("bio", *update.Bio)
	}
	if update.Born != nil {
		b = b.Set("born", *update.Born)
	}
	if update.Website != nil {
		b = b.Set("website", *update.Website)
	}
	if update.SocialMedia != nil {
		b = b.Set("social_media", *update.SocialMedia)
	}
	if update.IsAuthor != nil {
		b = b.Set("is_author", boolToInt(*update.IsAuthor))
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	if err := s.execAffecting(ctx, query, args...); err != nil {
		return nil, err
	}
	return s.GetUser(ctx, id)
}

// ListUsers returns every user ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return queryAll(ctx, s, scanUser, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
}

// SearchUsers matches query against name or email, ignoring case.
func (s *Store) SearchUsers(ctx context.Context, query string, limit int) ([]*domain.User, error) {
	b := psql.Select(userColumns).
		From("users").
		Where(likeAny(likePattern(query), "name", "email")).
		OrderBy("name", "id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return queryBuilt(ctx, s, b, scanUser)
}
