// Package domain holds the entities of the reading-community graph: users,
// books and their reviews, genres, communities with their memberships, and
// the posts and comments inside them. Entities reference each other only by
// id; relationships are resolved through the store.
package domain

import "time"

// DateLayout is the calendar-date format used for review dates, birth dates
// and membership anniversaries.
const DateLayout = "2006-01-02"

// Entity carries the identity and audit timestamps shared by every stored row.
type Entity struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (e *Entity) InitTimestamps() {
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
}

// Touch bumps UpdatedAt.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now().UTC()
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDate renders t as YYYY-MM-DD, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
