package domain

import "time"

// User is a registered account. Authors (IsAuthor) may publish books.
type User struct {
	Entity
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	MemberSince  time.Time `json:"member_since"`
	Bio          string    `json:"bio,omitempty"`
	Born         string    `json:"born,omitempty"`
	Website      string    `json:"website,omitempty"`
	SocialMedia  string    `json:"social_media,omitempty"`
	IsAuthor     bool      `json:"is_author"`
}

// ProfileUpdate lists the profile fields a user may change. Nil fields are
// left untouched.
type ProfileUpdate struct {
	Name        *string
	Bio         *string
	Born        *string
	Website     *string
	SocialMedia *string
	IsAuthor    *bool
}

// IsEmpty reports whether no field is set.
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.Bio == nil && p.Born == nil &&
		p.Website == nil && p.SocialMedia == nil && p.IsAuthor == nil
}

// Apply copies the set fields onto u.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Born != nil {
		u.Born = *p.Born
	}
	if p.Website != nil {
		u.Website = *p.Website
	}
	if p.SocialMedia != nil {
		u.SocialMedia = *p.SocialMedia
	}
	if p.IsAuthor != nil {
		u.IsAuthor = *p.IsAuthor
	}
}
