// Package search maintains a Bleve full-text index over users, books and
// communities for ranked discovery queries.
package search

import (
	"github.com/samber/lo"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/normalize"
)

// DocType discriminates entity kinds in the shared index.
type DocType string

// Indexed entity kinds.
const (
	DocTypeUser      DocType = "user"
	DocTypeBook      DocType = "book"
	DocTypeCommunity DocType = "community"
)

// AllDocTypes lists every indexed kind.
var AllDocTypes = []DocType{DocTypeUser, DocTypeBook, DocTypeCommunity}

// ParseDocType reports whether s names an indexed kind.
func ParseDocType(s string) (DocType, bool) {
	return lo.Find(AllDocTypes, func(t DocType) bool { return string(t) == s })
}

// Document is the flattened form of an entity stored in the index. Name is
// the primary text (user name, book title, community name); Description is
// secondary text (bio or description).
type Document struct {
	ID          string
	Type        DocType
	Name        string
	Description string
	Category    string   // communities only
	Genres      []string // genre slugs, books only
	CreatedAt   int64    // unix millis
}

// ToMap converts the document to the field names used by the index mapping.
func (d *Document) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"type":        string(d.Type),
		"name":        d.Name,
		"description": d.Description,
		"created_at":  d.CreatedAt,
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	return m
}

// UserDocument builds the index document of a user.
func UserDocument(u *domain.User) *Document {
	return &Document{
		ID:          u.ID,
		Type:        DocTypeUser,
		Name:        u.Name,
		Description: u.Bio,
		CreatedAt:   u.CreatedAt.UnixMilli(),
	}
}

// BookDocument builds the index document of a book and its genres.
func BookDocument(b *domain.Book, genres []*domain.Genre) *Document {
	return &Document{
		ID:          b.ID,
		Type:        DocTypeBook,
		Name:        b.Title,
		Description: b.Description,
		Genres:      lo.Map(genres, func(g *domain.Genre, _ int) string { return normalize.Slug(g.Type) }),
		CreatedAt:   b.CreatedAt.UnixMilli(),
	}
}

// CommunityDocument builds the index document of a community.
func CommunityDocument(c *domain.Community) *Document {
	return &Document{
		ID:          c.ID,
		Type:        DocTypeCommunity,
		Name:        c.Name,
		Description: c.Description,
		Category:    normalize.Slug(c.Category.Type),
		CreatedAt:   c.CreatedAt.UnixMilli(),
	}
}
