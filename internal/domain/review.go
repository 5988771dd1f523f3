package domain

import "time"

// Star rating bounds, inclusive.
const (
	MinStar = 0
	MaxStar = 5
)

// Review is a reader's rating and write-up of a book.
type Review struct {
	Entity
	UserID   string    `json:"user_id"`
	BookID   string    `json:"book_id"`
	Overview string    `json:"overview"`
	Content  string    `json:"content"`
	Star     int       `json:"star"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
}

// ReviewSummary aggregates the star ratings of a book's reviews.
type ReviewSummary struct {
	BookID   string  `json:"book_id"`
	Total    int     `json:"total"`
	Average  float64 `json:"average"`
	Positive int     `json:"positive"`
	Negative int     `json:"negative"`
}

// Summarize tallies reviews. Four stars and up count as positive, two and
// below as negative; three is neutral.
func Summarize(bookID string, reviews []*Review) ReviewSummary {
	s := ReviewSummary{BookID: bookID, Total: len(reviews)}
	if len(reviews) == 0 {
		return s
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Star
		switch {
		case r.Star >= 4:
			s.Positive++
		case r.Star <= 2:
			s.Negative++
		}
	}
	s.Average = float64(sum) / float64(len(reviews))
	return s
}
