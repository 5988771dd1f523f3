package service

import (
	"context"
	"fmt"

	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/id"
	"github.com/vivilio/vivilio-server/internal/normalize"
)

// ReviewService manages the reviews of a book.
type ReviewService struct {
	Deps
}

// NewReviewService creates a review service.
func NewReviewService(deps Deps) *ReviewService {
	return &ReviewService{Deps: deps.withDefaults()}
}

// ReviewRequest is the field table shared by addReview and updateReview.
// Dates are calendar dates in YYYY-MM-DD form.
type ReviewRequest struct {
	Content  string `json:"content,omitempty"`
	Overview string `json:"overview,omitempty" validate:"max=50" msg:"Overview must not be over 50 characters."`
	Star     int    `json:"star" validate:"min=0,max=5" msg:"Star must be in between 0 to 5 stars."`
	Started  string `json:"started,omitempty" validate:"isodate" msg:"Invalid starting date."`
	Finished string `json:"finished,omitempty" validate:"isodate" msg:"Invalid finishing date."`
}

func (r *ReviewRequest) normalize() {
	r.Content = normalize.Text(r.Content)
	r.Overview = normalize.Text(r.Overview)
	r.Started = normalize.Text(r.Started)
	r.Finished = normalize.Text(r.Finished)
}

// apply copies the validated request onto review.
func (r ReviewRequest) apply(review *domain.Review) error {
	started, err := domain.ParseDate(r.Started)
	if err != nil {
		return fmt.Errorf("parse started: %w", err)
	}
	finished, err := domain.ParseDate(r.Finished)
	if err != nil {
		return fmt.Errorf("parse finished: %w", err)
	}

	review.Content = r.Content
	review.Overview = r.Overview
	review.Star = r.Star
	review.Started = started
	review.Finished = finished
	return nil
}

// Add records a review of bookID by authorID.
func (s *ReviewService) Add(ctx context.Context, bookID, authorID string, req ReviewRequest) (*domain.Review, error) {
	review, err := s.add(ctx, bookID, authorID, req)
	return review, s.observe("add_review", err)
}

func (s *ReviewService) add(ctx context.Context, bookID, authorID string, req ReviewRequest) (*domain.Review, error) {
	req.normalize()
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.Store.GetBook(ctx, bookID); err != nil {
		return nil, notFound(err, msgBookNotFound)
	}

	reviewID, err := id.Generate(id.Review)
	if err != nil {
		return nil, fmt.Errorf("generate review ID: %w", err)
	}

	review := &domain.Review{
		Entity: domain.Entity{ID: reviewID},
		UserID: authorID,
		BookID: bookID,
	}
	if err := req.apply(review); err != nil {
		return nil, err
	}
	review.InitTimestamps()

	if err := s.Store.CreateReview(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.Logger.Info("review added", "review_id", review.ID, "book_id", bookID, "user_id", authorID)
	return review, nil
}

// List returns the reviews of a book, oldest first.
func (s *ReviewService) List(ctx context.Context, bookID string) ([]*domain.Review, error) {
	if _, err := s.Store.GetBook(ctx, bookID); err != nil {
		return nil, notFound(err, msgBookNotFound)
	}
	return s.Store.ListReviews(ctx, bookID)
}

// Summary tallies the star ratings of a book's reviews.
func (s *ReviewService) Summary(ctx context.Context, bookID string) (*domain.ReviewSummary, error) {
	reviews, err := s.List(ctx, bookID)
	if err != nil {
		return nil, err
	}
	summary := domain.Summarize(bookID, reviews)
	return &summary, nil
}

// Update rewrites a review. Any caller may edit any review of the book.
func (s *ReviewService) Update(ctx context.Context, bookID, reviewID string, req ReviewRequest) (*domain.Review, error) {
	review, err := s.update(ctx, bookID, reviewID, req)
	return review, s.observe("update_review", err)
}

func (s *ReviewService) update(ctx context.Context, bookID, reviewID string, req ReviewRequest) (*domain.Review, error) {
	req.normalize()
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if _, err := s.Store.GetBook(ctx, bookID); err != nil {
		return nil, notFound(err, msgBookNotFound)
	}
	review, err := s.Store.GetReview(ctx, bookID, reviewID)
	if err != nil {
		return nil, notFound(err, msgReviewNotFound)
	}

	if err := req.apply(review); err != nil {
		return nil, err
	}
	review.Touch()

	if err := s.Store.UpdateReview(ctx, review); err != nil {
		return nil, notFound(err, msgReviewNotFound)
	}

	s.Logger.Info("review updated", "review_id", reviewID, "book_id", bookID)
	return review, nil
}

// Delete removes a review and returns it. A second delete of the same id
// reports NOT_FOUND.
func (s *ReviewService) Delete(ctx context.Context, bookID, reviewID string) (*domain.Review, error) {
	review, err := s.delete(ctx, bookID, reviewID)
	return review, s.observe("delete_review", err)
}

func (s *ReviewService) delete(ctx context.Context, bookID, reviewID string) (*domain.Review, error) {
	if _, err := s.Store.GetBook(ctx, bookID); err != nil {
		return nil, notFound(err, msgBookNotFound)
	}
	review, err := s.Store.GetReview(ctx, bookID, reviewID)
	if err != nil {
		return nil, notFound(err, msgReviewNotFound)
	}
	if err := s.Store.DeleteReview(ctx, bookID, reviewID); err != nil {
		return nil, notFound(err, msgReviewNotFound)
	}

	s.Logger.Info("review deleted", "review_id", reviewID, "book_id", bookID)
	return review, nil
}
