package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "discover",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Discover",
		Description: "Ranked full-text search across users, books and communities",
		Tags:        []string{"Search"},
		Security:    bearerSecurity,
	}, s.handleDiscover)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/users",
		Summary:     "Search users",
		Description: "Case-insensitive substring match on name or email",
		Tags:        []string{"Search"},
		Security:    bearerSecurity,
	}, s.handleSearchUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/books",
		Summary:     "Search books",
		Description: "Case-insensitive substring match on title",
		Tags:        []string{"Search"},
		Security:    bearerSecurity,
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchCommunities",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/communities",
		Summary:     "Search communities",
		Description: "Case-insensitive substring match on name",
		Tags:        []string{"Search"},
		Security:    bearerSecurity,
	}, s.handleSearchCommunities)
}

// SearchInput carries a substring query.
type SearchInput struct {
	Query string `query:"query" doc:"Text to match"`
}

// DiscoverInput carries a ranked search.
type DiscoverInput struct {
	Query  string `query:"query" doc:"Search text"`
	Types  string `query:"types" doc:"Comma-separated types to search (user,book,community). Omit for all."`
	Genre  string `query:"genre" doc:"Only books with this genre"`
	Limit  int    `query:"limit" minimum:"0" maximum:"50" doc:"Max hits (default 20)"`
	Offset int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

// DiscoverOutput wraps ranked hits.
type DiscoverOutput struct {
	Body *search.Result
}

// UsersOutput wraps a list of users.
type UsersOutput struct {
	Body []*domain.User
}

func (s *Server) handleDiscover(ctx context.Context, input *DiscoverInput) (*DiscoverOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	var types []string
	if input.Types != "" {
		types = strings.Split(input.Types, ",")
		for i := range types {
			types[i] = strings.TrimSpace(types[i])
		}
	}

	result, err := s.services.Search.Discover(ctx, service.DiscoverRequest{
		Query:  input.Query,
		Types:  types,
		Genre:  input.Genre,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &DiscoverOutput{Body: result}, nil
}

func (s *Server) handleSearchUsers(ctx context.Context, input *SearchInput) (*UsersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	users, err := s.services.Search.Users(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &UsersOutput{Body: users}, nil
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchInput) (*BooksOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	books, err := s.services.Search.Books(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &BooksOutput{Body: books}, nil
}

func (s *Server) handleSearchCommunities(ctx context.Context, input *SearchInput) (*CommunitiesOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	communities, err := s.services.Search.Communities(ctx, input.Query)
	if err != nil {
		return nil, err
	}
	return &CommunitiesOutput{Body: communities}, nil
}
