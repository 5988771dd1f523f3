package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns every genre label, for strengths and book genres",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*GenresOutput, error) {
	genres, err := s.services.Profile.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	return &GenresOutput{Body: genres}, nil
}
