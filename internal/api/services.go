package api

import (
	"github.com/vivilio/vivilio-server/internal/service"
)

// Services groups the domain services the API server dispatches to.
type Services struct {
	Auth      *service.AuthService
	Profile   *service.ProfileService
	Book      *service.BookService
	Review    *service.ReviewService
	Community *service.CommunityService
	Content   *service.ContentService
	Search    *service.SearchService
}
