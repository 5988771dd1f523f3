package domain

import "time"

// RoleType is the label of a community role.
type RoleType string

// The fixed set of community roles.
const (
	RoleCreator   RoleType = "Creator"
	RoleModerator RoleType = "Moderator"
	RoleMember    RoleType = "Member"
)

// Authority returns the ordinal rank of the role. Unknown roles rank with Member.
func (r RoleType) Authority() int {
	switch r {
	case RoleCreator:
		return 2
	case RoleModerator:
		return 1
	default:
		return 0
	}
}

// CanManageMembers reports whether a holder of this role may add, update or
// remove other members.
func (r RoleType) CanManageMembers() bool {
	return r.Authority() > 0
}

// Assignable reports whether the role can be granted through member
// management. Creator is only ever set when a community is created.
func (r RoleType) Assignable() bool {
	return r != RoleCreator
}

// Role is a row of the role lookup table.
type Role struct {
	ID   string   `json:"id"`
	Type RoleType `json:"type"`
}

// Membership binds a user to a community with exactly one role.
type Membership struct {
	Entity
	UserID      string `json:"user_id"`
	CommunityID string `json:"community_id"`
	Role        Role   `json:"role"`

	// UserName is filled in by roster queries.
	UserName string `json:"user_name,omitempty"`
}

// IsCreator reports whether the membership holds the Creator role.
func (m *Membership) IsCreator() bool {
	return m.Role.Type == RoleCreator
}

// JoinedCommunity is a community seen from one of its members.
type JoinedCommunity struct {
	Community *Community `json:"community"`
	Role      Role       `json:"role"`
	JoinedAt  time.Time  `json:"joined_at"`
}
