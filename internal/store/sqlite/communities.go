package sqlite

import (
	"context"

	"github.com/vivilio/vivilio-server/internal/domain"
)

// communitySelect joins the descriptive lookups. Column order must match
// scanCommunity.
const communitySelect = `
	SELECT c.id, c.created_at, c.updated_at, c.name, c.description, c.restrict_posting,
	       v.id, v.type, cat.id, cat.type
	FROM communities c
	JOIN visibilities v ON v.id = c.visibility_id
	JOIN categories cat ON cat.id = c.category_id`

func scanCommunity(row scanner) (*domain.Community, error) {
	var (
		c                    domain.Community
		createdAt, updatedAt string
		restrict             int
	)
	err := row.Scan(&c.ID, &createdAt, &updatedAt, &c.Name, &c.Description, &restrict,
		&c.Visibility.ID, &c.Visibility.Type, &c.Category.ID, &c.Category.Type)
	if err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.RestrictPosting = restrict != 0
	return &c, nil
}

// CreateCommunity inserts a community. Visibility.ID and Category.ID must
// reference existing lookup rows. Names are unique.
func (s *Store) CreateCommunity(ctx context.Context, c *domain.Community) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO communities (id, created_at, updated_at, name, description, restrict_posting, visibility_id, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt), c.Name, c.Description,
		boolToInt(c.RestrictPosting), c.Visibility.ID, c.Category.ID)
	return mapError(err)
}

// GetCommunity retrieves a community with its visibility and category.
func (s *Store) GetCommunity(ctx context.Context, id string) (*domain.Community, error) {
	c, err := scanCommunity(s.q.QueryRowContext(ctx, communitySelect+` WHERE c.id = ?`, id))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// CommunityNameTaken reports whether a community already uses name.
func (s *Store) CommunityNameTaken(ctx context.Context, name string) (bool, error) {
	var exists int
	err := s.q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM communities WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

// ListCommunities returns every community ordered by name.
func (s *Store) ListCommunities(ctx context.Context) ([]*domain.Community, error) {
	return queryAll(ctx, s, scanCommunity, communitySelect+` ORDER BY c.name, c.id`)
}

// SearchCommunities matches query against the name, ignoring case.
func (s *Store) SearchCommunities(ctx context.Context, query string, limit int) ([]*domain.Community, error) {
	b := psql.Select(
		"c.id", "c.created_at", "c.updated_at", "c.name", "c.description", "c.restrict_posting",
		"v.id", "v.type", "cat.id", "cat.type",
	).
		From("communities c").
		Join("visibilities v ON v.id = c.visibility_id").
		Join("categories cat ON cat.id = c.category_id").
		Where(likeAny(likePattern(query), "c.name")).
		OrderBy("c.name", "c.id")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	return queryBuilt(ctx, s, b, scanCommunity)
}
