package sqlite

import (
	"context"

	"github.com/vivilio/vivilio-server/internal/domain"
)

// GetRoleByType retrieves a community role by its exact label.
func (s *Store) GetRoleByType(ctx context.Context, label string) (*domain.Role, error) {
	var r domain.Role
	var t string
	err := s.q.QueryRowContext(ctx, `SELECT id, type FROM roles WHERE type = ?`, label).Scan(&r.ID, &t)
	if err != nil {
		return nil, mapError(err)
	}
	r.Type = domain.RoleType(t)
	return &r, nil
}

func scanVisibility(row scanner) (*domain.Visibility, error) {
	var v domain.Visibility
	if err := row.Scan(&v.ID, &v.Type); err != nil {
		return nil, err
	}
	return &v, nil
}

func scanCategory(row scanner) (*domain.Category, error) {
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Type); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetVisibilityByType retrieves a visibility by its exact label.
func (s *Store) GetVisibilityByType(ctx context.Context, label string) (*domain.Visibility, error) {
	v, err := scanVisibility(s.q.QueryRowContext(ctx, `SELECT id, type FROM visibilities WHERE type = ?`, label))
	if err != nil {
		return nil, mapError(err)
	}
	return v, nil
}

// GetCategoryByType retrieves a category by its exact label.
func (s *Store) GetCategoryByType(ctx context.Context, label string) (*domain.Category, error) {
	c, err := scanCategory(s.q.QueryRowContext(ctx, `SELECT id, type FROM categories WHERE type = ?`, label))
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

// ListVisibilities returns the visibility lookup table.
func (s *Store) ListVisibilities(ctx context.Context) ([]*domain.Visibility, error) {
	return queryAll(ctx, s, scanVisibility, `SELECT id, type FROM visibilities ORDER BY type`)
}

// ListCategories returns the category lookup table.
func (s *Store) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	return queryAll(ctx, s, scanCategory, `SELECT id, type FROM categories ORDER BY type`)
}
