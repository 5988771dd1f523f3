package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/vivilio/vivilio-server/internal/domain"
	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
	"github.com/vivilio/vivilio-server/internal/id"
	"github.com/vivilio/vivilio-server/internal/media/images"
	"github.com/vivilio/vivilio-server/internal/normalize"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/store"
)

// BookService manages books, their covers, publishing records and genres.
type BookService struct {
	Deps
	covers *images.Storage
}

// NewBookService creates a book service storing covers in covers.
func NewBookService(deps Deps, covers *images.Storage) *BookService {
	return &BookService{Deps: deps.withDefaults(), covers: covers}
}

// Upload is a file received with a request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateBookRequest carries the fields of createBook.
type CreateBookRequest struct {
	Title       string
	Description string
	Cover       *Upload
}

// UpdateBookRequest carries the fields of updateBook. Nil fields are kept.
type UpdateBookRequest struct {
	Title       *string
	Description *string
	Cover       *Upload
}

// BookDetails is a book with its author and genres.
type BookDetails struct {
	Book   *domain.Book    `json:"book"`
	Author *domain.User    `json:"author"`
	Genres []*domain.Genre `json:"genres"`
}

// AttachGenreRequest is the field table of attachGenre.
type AttachGenreRequest struct {
	Type string `json:"type,omitempty" validate:"required,max=20" msg:"Genre type must not be more than 20 characters."`
}

type createBookTable struct {
	Title       string `json:"title" validate:"required,max=50" msg_required:"Please input all fields." msg_max:"Title must not be more than 50 characters."`
	Description string `json:"description" validate:"required,max=250" msg_required:"Please input all fields." msg_max:"Description must not be more than 250 characters."`
	Cover       string `json:"cover" validate:"required,imageext" msg_required:"Please input all fields." msg_imageext:"Image formats allow: jpg, jpeg, png."`
}

type updateBookTable struct {
	Title       *string `json:"title" validate:"omitnil,notblank,max=50" msg_notblank:"Please input all fields." msg_max:"Title must not be more than 50 characters."`
	Description *string `json:"description" validate:"omitnil,notblank,max=250" msg_notblank:"Please input all fields." msg_max:"Description must not be more than 250 characters."`
	Cover       *string `json:"cover" validate:"omitnil,imageext" msg:"Image formats allow: jpg, jpeg, png."`
}

// Create publishes a new book authored by authorID. Book and publishing
// record are written in one transaction; the stored cover is removed if
// that transaction fails.
func (s *BookService) Create(ctx context.Context, authorID string, req CreateBookRequest) (*domain.Book, error) {
	book, err := s.create(ctx, authorID, req)
	return book, s.observe("create_book", err)
}

func (s *BookService) create(ctx context.Context, authorID string, req CreateBookRequest) (*domain.Book, error) {
	req.Title = normalize.Text(req.Title)
	req.Description = normalize.Description(req.Description)

	table := createBookTable{Title: req.Title, Description: req.Description}
	if req.Cover != nil {
		table.Cover = req.Cover.Filename
	}
	if err := validate.Validate(table); err != nil {
		return nil, err
	}

	author, err := s.Store.GetUser(ctx, authorID)
	if err != nil {
		return nil, notFound(err, msgUserNotFound)
	}
	if !author.IsAuthor {
		return nil, domainerrors.Forbidden(msgNotAnAuthor)
	}

	stored, err := s.saveCover(req.Cover)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.Book)
	if err != nil {
		s.removeCover(stored.Reference)
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	book := &domain.Book{
		Entity:        domain.Entity{ID: bookID},
		Title:         req.Title,
		Description:   req.Description,
		Cover:         stored.Reference,
		CoverBlurHash: s.blurHash(stored),
	}
	book.InitTimestamps()

	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.CreateBook(ctx, book); err != nil {
			return fmt.Errorf("create book: %w", err)
		}
		if err := tx.CreatePublish(ctx, &domain.Publish{UserID: authorID, BookID: book.ID}); err != nil {
			return fmt.Errorf("create publish: %w", err)
		}
		return nil
	})
	if err != nil {
		s.removeCover(stored.Reference)
		return nil, err
	}

	s.index(search.BookDocument(book, nil))
	s.Logger.Info("book created", "book_id", book.ID, "user_id", authorID)

	return book, nil
}

// Get returns a book with its author and genres.
func (s *BookService) Get(ctx context.Context, bookID string) (*BookDetails, error) {
	book, err := s.Store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, msgBookNotFound)
	}

	details := &BookDetails{Book: book}

	publish, err := s.Store.GetPublish(ctx, bookID)
	switch {
	case err == nil:
		if details.Author, err = s.Store.GetUser(ctx, publish.UserID); err != nil {
			return nil, fmt.Errorf("load author: %w", err)
		}
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("load publish: %w", err)
	}

	if details.Genres, err = s.Store.ListBookGenres(ctx, bookID); err != nil {
		return nil, fmt.Errorf("list book genres: %w", err)
	}
	return details, nil
}

// List returns every book.
func (s *BookService) List(ctx context.Context) ([]*domain.Book, error) {
	return s.Store.ListBooks(ctx)
}

// Update changes the supplied fields of a book the actor published. A new
// cover replaces the old file.
func (s *BookService) Update(ctx context.Context, actorID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	book, err := s.update(ctx, actorID, bookID, req)
	return book, s.observe("update_book", err)
}

func (s *BookService) update(ctx context.Context, actorID, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	req.Title = mapPtr(req.Title, normalize.Text)
	req.Description = mapPtr(req.Description, normalize.Description)

	table := updateBookTable{Title: req.Title, Description: req.Description}
	if req.Cover != nil {
		table.Cover = &req.Cover.Filename
	}
	if err := validate.Validate(table); err != nil {
		return nil, err
	}

	book, err := s.Store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, msgBookNotFound)
	}
	if err := s.requirePublisher(ctx, actorID, bookID, msgCannotUpdateBook); err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}

	oldCover := book.Cover
	var stored *images.Stored
	if req.Cover != nil {
		if stored, err = s.saveCover(req.Cover); err != nil {
			return nil, err
		}
		book.Cover = stored.Reference
		book.CoverBlurHash = s.blurHash(stored)
	}

	book.Touch()
	if err := s.Store.UpdateBook(ctx, book); err != nil {
		if stored != nil {
			s.removeCover(stored.Reference)
		}
		return nil, notFound(err, msgBookNotFound)
	}
	if stored != nil {
		s.removeCover(oldCover)
	}

	s.reindex(ctx, book)
	s.Logger.Info("book updated", "book_id", book.ID, "user_id", actorID)

	return book, nil
}

// Delete removes a book the actor published: the publishing record first,
// then the cover file, then the book with its reviews and genre links. A
// cover that cannot be removed is logged and does not block the deletion.
func (s *BookService) Delete(ctx context.Context, actorID, bookID string) (*domain.Book, error) {
	book, err := s.delete(ctx, actorID, bookID)
	return book, s.observe("delete_book", err)
}

func (s *BookService) delete(ctx context.Context, actorID, bookID string) (*domain.Book, error) {
	book, err := s.Store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, msgBookNotFound)
	}
	if err := s.requirePublisher(ctx, actorID, bookID, msgCannotDeleteBook); err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Store) error {
		if err := tx.DeletePublish(ctx, bookID); err != nil {
			return fmt.Errorf("delete publish: %w", err)
		}
		s.removeCover(book.Cover)
		if err := tx.DeleteBook(ctx, bookID); err != nil {
			return fmt.Errorf("delete book: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.unindex(bookID)
	s.Logger.Info("book deleted", "book_id", bookID, "user_id", actorID)

	return book, nil
}

// AttachGenre links the genre labelled req.Type to a book and returns the
// book's genres.
func (s *BookService) AttachGenre(ctx context.Context, bookID string, req AttachGenreRequest) ([]*domain.Genre, error) {
	genres, err := s.attachGenre(ctx, bookID, req)
	return genres, s.observe("attach_genre", err)
}

func (s *BookService) attachGenre(ctx context.Context, bookID string, req AttachGenreRequest) ([]*domain.Genre, error) {
	req.Type = normalize.Label(req.Type)
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.Store.GetBook(ctx, bookID)
	if err != nil {
		return nil, notFound(err, msgBookNotFound)
	}
	genre, err := s.Store.GetGenreByType(ctx, req.Type)
	if err != nil {
		return nil, notFound(err, msgGenreNotFound)
	}

	if err := s.Store.AttachGenre(ctx, bookID, genre.ID); err != nil {
		return nil, conflict(err, msgGenreAttached, "attach genre")
	}

	s.reindex(ctx, book)
	s.Logger.Info("genre attached", "book_id", bookID, "genre_id", genre.ID)

	return s.Store.ListBookGenres(ctx, bookID)
}

// ListGenres returns the genres of a book.
func (s *BookService) ListGenres(ctx context.Context, bookID string) ([]*domain.Genre, error) {
	if _, err := s.Store.GetBook(ctx, bookID); err != nil {
		return nil, notFound(err, msgBookNotFound)
	}
	return s.Store.ListBookGenres(ctx, bookID)
}

// DetachGenre unlinks a genre from a book and returns the remaining genres.
func (s *BookService) DetachGenre(ctx context.Context, bookID, genreID string) ([]*domain.Genre, error) {
	genres, err := s.detachGenre(ctx, bookID, genreID)
	return genres, s.observe("detach_genre", err)
}

func (s *BookService) detachGenre(ctx context.Context, bookID, genreID string) ([]*domain.Genre, error) {
	if err := s.Store.DetachGenre(ctx, bookID, genreID); err != nil {
		return nil, notFound(err, msgBookGenreNotFound)
	}

	if book, err := s.Store.GetBook(ctx, bookID); err == nil {
		s.reindex(ctx, book)
	}
	s.Logger.Info("genre detached", "book_id", bookID, "genre_id", genreID)

	return s.Store.ListBookGenres(ctx, bookID)
}

// requirePublisher fails with FORBIDDEN(msg) unless actorID holds the
// book's publishing record.
func (s *BookService) requirePublisher(ctx context.Context, actorID, bookID, msg string) error {
	publish, err := s.Store.GetPublish(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.Forbidden(msg)
		}
		return fmt.Errorf("load publish: %w", err)
	}
	if publish.UserID != actorID {
		return domainerrors.Forbidden(msg)
	}
	return nil
}

func (s *BookService) saveCover(upload *Upload) (*images.Stored, error) {
	stored, err := s.covers.Save(upload.Filename, upload.Content)
	if err != nil {
		if errors.Is(err, images.ErrTooLarge) {
			return nil, domainerrors.InvalidField("cover", "Cover image is too large.")
		}
		return nil, fmt.Errorf("save cover: %w", err)
	}
	return stored, nil
}

// blurHash computes the cover placeholder. An undecodable image still gets
// stored; only the placeholder is skipped.
func (s *BookService) blurHash(stored *images.Stored) string {
	hash, err := images.ComputeBlurHash(stored.Path)
	if err != nil {
		s.Logger.Warn("failed to compute cover blurhash", "cover", stored.Name, "error", err)
		return ""
	}
	return hash
}

func (s *BookService) removeCover(ref string) {
	if ref == "" {
		return
	}
	if err := s.covers.DeleteReference(ref); err != nil {
		s.Logger.Warn("failed to delete cover", "cover", ref, "error", err)
	}
}

func (s *BookService) reindex(ctx context.Context, book *domain.Book) {
	genres, err := s.Store.ListBookGenres(ctx, book.ID)
	if err != nil {
		s.Logger.Warn("failed to load genres for indexing", "book_id", book.ID, "error", err)
	}
	s.index(search.BookDocument(book, genres))
}
