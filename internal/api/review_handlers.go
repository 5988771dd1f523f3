package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews",
		Summary:     "List reviews",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleListReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "reviewSummary",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/reviews/summary",
		Summary:     "Review summary",
		Description: "Counts reviews and derives polarity from stars: 4 and up positive, 2 and below negative",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleReviewSummary)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addReview",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/reviews",
		Summary:       "Add review",
		Tags:          []string{"Reviews"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleAddReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}/reviews/{review_id}",
		Summary:     "Update review",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/reviews/{review_id}",
		Summary:     "Delete review",
		Description: "Deletes a review and returns it",
		Tags:        []string{"Reviews"},
		Security:    bearerSecurity,
	}, s.handleDeleteReview)
}

// ReviewInput is the request for addReview.
type ReviewInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.ReviewRequest
}

// ReviewIDInput identifies a review of a book.
type ReviewIDInput struct {
	ID       string `path:"id" doc:"Book ID"`
	ReviewID string `path:"review_id" doc:"Review ID"`
}

// UpdateReviewInput is the request for updateReview.
type UpdateReviewInput struct {
	ID       string `path:"id" doc:"Book ID"`
	ReviewID string `path:"review_id" doc:"Review ID"`
	Body     service.ReviewRequest
}

// ReviewOutput wraps a single review.
type ReviewOutput struct {
	Body *domain.Review
}

// ReviewsOutput wraps a list of reviews.
type ReviewsOutput struct {
	Body []*domain.Review
}

// ReviewSummaryOutput wraps a review summary.
type ReviewSummaryOutput struct {
	Body *domain.ReviewSummary
}

func (s *Server) handleListReviews(ctx context.Context, input *BookIDInput) (*ReviewsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	reviews, err := s.services.Review.List(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReviewsOutput{Body: reviews}, nil
}

func (s *Server) handleReviewSummary(ctx context.Context, input *BookIDInput) (*ReviewSummaryOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	summary, err := s.services.Review.Summary(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &ReviewSummaryOutput{Body: summary}, nil
}

func (s *Server) handleAddReview(ctx context.Context, input *ReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	review, err := s.services.Review.Add(ctx, input.ID, userID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	review, err := s.services.Review.Update(ctx, input.ID, input.ReviewID, input.Body)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*ReviewOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	review, err := s.services.Review.Delete(ctx, input.ID, input.ReviewID)
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}
