package domain

// Genre is a lookup label shared by books (BookGenre) and user strengths.
type Genre struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Strength records that a user declared interest or skill in a genre.
type Strength struct {
	UserID  string `json:"user_id"`
	GenreID string `json:"genre_id"`
}
