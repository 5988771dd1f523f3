package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/normalize"
	"github.com/vivilio/vivilio-server/internal/search"
)

// SearchLimit caps substring search results.
const SearchLimit = 50

// SearchService answers substring lookups from the store and ranked
// discovery queries from the full-text index.
type SearchService struct {
	Deps
	idx *search.Index
}

// NewSearchService creates a search service. idx may be nil, in which case
// Discover reports the index as unavailable.
func NewSearchService(deps Deps, idx *search.Index) *SearchService {
	return &SearchService{Deps: deps.withDefaults(), idx: idx}
}

type searchTable struct {
	Query string `json:"query" validate:"notblank" msg:"Search query must have value."`
}

// DiscoverRequest configures a ranked search.
type DiscoverRequest struct {
	Query  string
	Types  []string
	Genre  string
	Limit  int
	Offset int
}

func checkQuery(q string) (string, error) {
	q = normalize.Label(q)
	if err := validate.Validate(searchTable{Query: q}); err != nil {
		return "", err
	}
	return q, nil
}

// Users matches query against user names and emails.
func (s *SearchService) Users(ctx context.Context, query string) ([]*domain.User, error) {
	q, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	return s.Store.SearchUsers(ctx, q, SearchLimit)
}

// Books matches query against book titles.
func (s *SearchService) Books(ctx context.Context, query string) ([]*domain.Book, error) {
	q, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	return s.Store.SearchBooks(ctx, q, SearchLimit)
}

// Communities matches query against community names.
func (s *SearchService) Communities(ctx context.Context, query string) ([]*domain.Community, error) {
	q, err := checkQuery(query)
	if err != nil {
		return nil, err
	}
	return s.Store.SearchCommunities(ctx, q, SearchLimit)
}

// Discover runs a ranked full-text query across users, books and
// communities. Unknown type names are rejected.
func (s *SearchService) Discover(ctx context.Context, req DiscoverRequest) (*search.Result, error) {
	if s.idx == nil {
		return nil, domainerrors.Internal("Search index is unavailable.")
	}

	types := make([]search.DocType, 0, len(req.Types))
	for _, name := range lo.Uniq(lo.Compact(req.Types)) {
		t, ok := search.ParseDocType(name)
		if !ok {
			return nil, domainerrors.InvalidField("types", fmt.Sprintf("Unknown search type %q.", name))
		}
		types = append(types, t)
	}

	result, err := s.idx.Search(ctx, search.Params{
		Query:  normalize.Text(req.Query),
		Types:  types,
		Genre:  normalize.Slug(req.Genre),
		Limit:  min(req.Limit, SearchLimit),
		Offset: max(req.Offset, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return result, nil
}

// Rebuild recreates the index from the store.
func (s *SearchService) Rebuild(ctx context.Context) (int, error) {
	if s.idx == nil {
		return 0, nil
	}
	start := time.Now()

	docs, err := s.documents(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.idx.Rebuild(); err != nil {
		return 0, fmt.Errorf("reset index: %w", err)
	}
	if err := s.idx.IndexBatch(docs); err != nil {
		return 0, fmt.Errorf("index documents: %w", err)
	}
	s.recordIndexSize(s.idx)

	s.Logger.Info("search index rebuilt", "documents", len(docs), "duration", time.Since(start))
	return len(docs), nil
}

// EnsureIndexed rebuilds the index when it was freshly created or is empty
// while the store is not.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	if s.idx == nil {
		return nil
	}
	count, err := s.idx.Count()
	if err != nil {
		return fmt.Errorf("count index: %w", err)
	}
	if !s.idx.Created() && count > 0 {
		s.Metrics.SetSearchDocuments(count)
		return nil
	}
	_, err = s.Rebuild(ctx)
	return err
}

// Count returns the number of indexed documents.
func (s *SearchService) Count() (uint64, error) {
	if s.idx == nil {
		return 0, nil
	}
	return s.idx.Count()
}

func (s *SearchService) documents(ctx context.Context) ([]*search.Document, error) {
	users, err := s.Store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	books, err := s.Store.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	communities, err := s.Store.ListCommunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}

	docs := make([]*search.Document, 0, len(users)+len(books)+len(communities))
	docs = append(docs, lo.Map(users, func(u *domain.User, _ int) *search.Document { return search.UserDocument(u) })...)
	for _, b := range books {
		genres, err := s.Store.ListBookGenres(ctx, b.ID)
		if err != nil {
			return nil, fmt.Errorf("list genres of %s: %w", b.ID, err)
		}
		docs = append(docs, search.BookDocument(b, genres))
	}
	docs = append(docs, lo.Map(communities, func(c *domain.Community, _ int) *search.Document { return search.CommunityDocument(c) })...)
	return docs, nil
}
