package domain

// Book is a published work. Cover holds the reference returned by the cover
// storage, e.g. "/api/images/9f1c...e2.png".
type Book struct {
	Entity
	Title         string `json:"title"`
	Description   string `json:"description"`
	Cover         string `json:"cover"`
	CoverBlurHash string `json:"cover_blurhash,omitempty"`
}

// Publish links a book to the user who authored it. Every book has exactly one.
type Publish struct {
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`
}
