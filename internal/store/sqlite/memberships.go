package sqlite

import (
	"context"
	"time"

	"github.com/vivilio/vivilio-server/internal/domain"
)

// membershipSelect must match the scan order in scanMembership.
const membershipSelect = `
	SELECT m.id, m.created_at, m.updated_at, m.user_id, m.community_id, r.id, r.type, u.name
	FROM memberships m
	JOIN roles r ON r.id = m.role_id
	JOIN users u ON u.id = m.user_id`

func scanMembership(row scanner) (*domain.Membership, error) {
	var (
		m                    domain.Membership
		createdAt, updatedAt string
		roleType             string
	)
	err := row.Scan(&m.ID, &createdAt, &updatedAt, &m.UserID, &m.CommunityID,
		&m.Role.ID, &roleType, &m.UserName)
	if err != nil {
		return nil, err
	}
	if err := parseTimestamps(createdAt, updatedAt, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Role.Type = domain.RoleType(roleType)
	return &m, nil
}

// CreateMembership inserts a membership. A user holds at most one
// membership per community.
func (s *Store) CreateMembership(ctx context.Context, m *domain.Membership) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO memberships (id, created_at, updated_at, user_id, community_id, role_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, formatTime(m.CreatedAt), formatTime(m.UpdatedAt), m.UserID, m.CommunityID, m.Role.ID)
	return mapError(err)
}

// GetMembership returns the membership of userID in communityID.
func (s *Store) GetMembership(ctx context.Context, communityID, userID string) (*domain.Membership, error) {
	m, err := scanMembership(s.q.QueryRowContext(ctx,
		membershipSelect+` WHERE m.community_id = ? AND m.user_id = ?`, communityID, userID))
	if err != nil {
		return nil, mapError(err)
	}
	return m, nil
}

// ListMembers returns the roster of a community, highest role first.
func (s *Store) ListMembers(ctx context.Context, communityID string) ([]*domain.Membership, error) {
	return queryAll(ctx, s, scanMembership, membershipSelect+`
		WHERE m.community_id = ?
		ORDER BY CASE r.type WHEN 'Creator' THEN 0 WHEN 'Moderator' THEN 1 ELSE 2 END, m.created_at, m.id`,
		communityID)
}

// ListJoinedCommunities returns the communities userID belongs to, most
// recently joined first.
func (s *Store) ListJoinedCommunities(ctx context.Context, userID string) ([]*domain.JoinedCommunity, error) {
	return queryAll(ctx, s, func(row scanner) (*domain.JoinedCommunity, error) {
		var (
			c                    domain.Community
			j                    domain.JoinedCommunity
			createdAt, updatedAt string
			joinedAt, roleType   string
			restrict             int
		)
		err := row.Scan(&c.ID, &createdAt, &updatedAt, &c.Name, &c.Description, &restrict,
			&c.Visibility.ID, &c.Visibility.Type, &c.Category.ID, &c.Category.Type,
			&j.Role.ID, &roleType, &joinedAt)
		if err != nil {
			return nil, err
		}
		if err := parseTimestamps(createdAt, updatedAt, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if j.JoinedAt, err = parseTime(joinedAt); err != nil {
			return nil, err
		}
		c.RestrictPosting = restrict != 0
		j.Role.Type = domain.RoleType(roleType)
		j.Community = &c
		return &j, nil
	}, `
		SELECT c.id, c.created_at, c.updated_at, c.name, c.description, c.restrict_posting,
		       v.id, v.type, cat.id, cat.type, r.id, r.type, m.created_at
		FROM memberships m
		JOIN communities c ON c.id = m.community_id
		JOIN visibilities v ON v.id = c.visibility_id
		JOIN categories cat ON cat.id = c.category_id
		JOIN roles r ON r.id = m.role_id
		WHERE m.user_id = ?
		ORDER BY m.created_at DESC, c.id`, userID)
}

// UpdateMembershipRole changes the role of a membership.
func (s *Store) UpdateMembershipRole(ctx context.Context, membershipID string, role domain.Role) error {
	return s.execAffecting(ctx,
		`UPDATE memberships SET role_id = ?, updated_at = ? WHERE id = ?`,
		role.ID, formatTime(time.Now()), membershipID)
}

// DeleteMembership removes a membership.
func (s *Store) DeleteMembership(ctx context.Context, membershipID string) error {
	return s.execAffecting(ctx, `DELETE FROM memberships WHERE id = ?`, membershipID)
}
