package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/http/response"
	"github.com/vivilio/vivilio-server/internal/service"
)

const msgUploadTooLarge = "Cover image is too large."

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns every published book",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book with its author and genres",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book the caller published, with its cover, reviews and genre links",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleDeleteBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/genres",
		Summary:     "List book genres",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleListBookGenres)

	huma.Register(s.api, huma.Operation{
		OperationID:   "attachBookGenre",
		Method:        http.MethodPost,
		Path:          "/api/v1/books/{id}/genres",
		Summary:       "Attach genre",
		Description:   "Attaches a genre by label and returns the book's genres",
		Tags:          []string{"Books"},
		Security:      bearerSecurity,
		DefaultStatus: http.StatusCreated,
	}, s.handleAttachBookGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "detachBookGenre",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}/genres/{genre_id}",
		Summary:     "Detach genre",
		Tags:        []string{"Books"},
		Security:    bearerSecurity,
	}, s.handleDetachBookGenre)

	// Multipart uploads bypass huma so the cover streams straight to storage.
	s.router.With(s.requireAuth).Post("/api/v1/books", s.handleCreateBook)
	s.router.With(s.requireAuth).Put("/api/v1/books/{id}", s.handleUpdateBook)
}

// BookIDInput identifies a book.
type BookIDInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book.
type BookOutput struct {
	Body *domain.Book
}

// BooksOutput wraps a list of books.
type BooksOutput struct {
	Body []*domain.Book
}

// BookDetailsOutput wraps a book with author and genres.
type BookDetailsOutput struct {
	Body *service.BookDetails
}

// AttachBookGenreInput is the request for attachBookGenre.
type AttachBookGenreInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body service.AttachGenreRequest
}

// DetachBookGenreInput identifies a book genre link.
type DetachBookGenreInput struct {
	ID      string `path:"id" doc:"Book ID"`
	GenreID string `path:"genre_id" doc:"Genre ID"`
}

func (s *Server) handleListBooks(ctx context.Context, _ *struct{}) (*BooksOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	books, err := s.services.Book.List(ctx)
	if err != nil {
		return nil, err
	}
	return &BooksOutput{Body: books}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookDetailsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	details, err := s.services.Book.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookDetailsOutput{Body: details}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	book, err := s.services.Book.Delete(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: book}, nil
}

func (s *Server) handleListBookGenres(ctx context.Context, input *BookIDInput) (*GenresOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	genres, err := s.services.Book.ListGenres(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GenresOutput{Body: genres}, nil
}

func (s *Server) handleAttachBookGenre(ctx context.Context, input *AttachBookGenreInput) (*GenresOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	genres, err := s.services.Book.AttachGenre(ctx, input.ID, input.Body)
	if err != nil {
		return nil, err
	}
	return &GenresOutput{Body: genres}, nil
}

func (s *Server) handleDetachBookGenre(ctx context.Context, input *DetachBookGenreInput) (*GenresOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	genres, err := s.services.Book.DetachGenre(ctx, input.ID, input.GenreID)
	if err != nil {
		return nil, err
	}
	return &GenresOutput{Body: genres}, nil
}

// handleCreateBook accepts multipart fields title and description plus the
// cover file.
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseBookForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	req := service.CreateBookRequest{
		Title:       form.value("title"),
		Description: form.value("description"),
		Cover:       form.cover,
	}

	book, err := s.services.Book.Create(r.Context(), userIDFrom(r), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.Created(w, book, s.logger)
}

// handleUpdateBook changes only the fields present in the form.
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseBookForm(w, r)
	if !ok {
		return
	}
	defer form.close()

	req := service.UpdateBookRequest{
		Title:       form.optional("title"),
		Description: form.optional("description"),
		Cover:       form.cover,
	}

	book, err := s.services.Book.Update(r.Context(), userIDFrom(r), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	response.OK(w, book, s.logger)
}

// bookForm is a parsed book upload. cover is nil when no file was sent.
type bookForm struct {
	values map[string][]string
	cover  *service.Upload
	file   multipart.File
	form   *multipart.Form
}

func (f *bookForm) value(key string) string {
	if vs := f.values[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (f *bookForm) optional(key string) *string {
	vs, ok := f.values[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	return &vs[0]
}

func (f *bookForm) close() {
	if f.file != nil {
		f.file.Close()
	}
	if f.form != nil {
		_ = f.form.RemoveAll()
	}
}

// parseBookForm reads a multipart (or urlencoded, for updates without a new
// cover) body. It writes the error response itself and reports false when
// the body cannot be read.
func (s *Server) parseBookForm(w http.ResponseWriter, r *http.Request) (*bookForm, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.BadRequest(w, msgUploadTooLarge, s.logger)
			return nil, false
		}
		response.BadRequest(w, "Invalid form data.", s.logger)
		return nil, false
	}

	form := &bookForm{values: r.PostForm, form: r.MultipartForm}
	if r.MultipartForm == nil {
		return form, true
	}

	file, header, err := r.FormFile("cover")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		form.close()
		response.BadRequest(w, "Invalid cover upload.", s.logger)
		return nil, false
	default:
		form.file = file
		form.cover = &service.Upload{Filename: header.Filename, Content: file}
	}
	return form, true
}
