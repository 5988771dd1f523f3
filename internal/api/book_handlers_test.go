package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/media/images"
	"github.com/vivilio/vivilio-server/internal/service"
)

func TestCreateBook(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")

	book := ts.createBook(t, ann, "Northern Lights")
	assert.Equal(t, "Northern Lights", book.Title)
	assert.True(t, strings.HasPrefix(book.Cover, images.ReferencePrefix), book.Cover)
	assert.NotEmpty(t, book.CoverBlurHash)

	resp := ts.api.Get("/api/v1/books/"+book.ID, ann.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	details := decodeEnvelope[service.BookDetails](t, resp).Data
	assert.Equal(t, book.ID, details.Book.ID)
	assert.Equal(t, ann.ID, details.Author.ID)
	assert.Empty(t, details.Genres)

	resp = ts.api.Get("/api/v1/books", ann.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[[]domain.Book](t, resp).Data, 1)
}

func TestCreateBook_Rejections(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")
	reader := ts.signUp(t, "bo@x.com", "Bo")
	fields := map[string]string{"title": "Dune", "description": "Sand."}

	tests := []struct {
		name   string
		user   testUser
		fields map[string]string
		cover  string
		status int
		code   string
		msg    string
		field  string
	}{
		{"not an author", reader, fields, "cover.png", http.StatusForbidden, "FORBIDDEN", "User is not an author.", ""},
		{"missing cover", ann, fields, "", http.StatusBadRequest, "VALIDATION", "Please input all fields.", "cover"},
		{"gif cover", ann, fields, "cover.gif", http.StatusBadRequest, "VALIDATION", "Image formats allow: jpg, jpeg, png.", "cover"},
		{"missing title", ann, map[string]string{"description": "Sand."}, "cover.png", http.StatusBadRequest, "VALIDATION", "Please input all fields.", "title"},
		{"long title", ann, map[string]string{"title": strings.Repeat("a", 51), "description": "Sand."}, "cover.png", http.StatusBadRequest, "VALIDATION", "Title must not be more than 50 characters.", "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := bookFormBody(t, tt.fields, tt.cover)
			resp := ts.api.Post("/api/v1/books", tt.user.auth(), "Content-Type: "+contentType, body)
			env := requireError(t, resp, tt.status, tt.code, tt.msg)
			if tt.field != "" {
				assert.Equal(t, tt.field, env.Details["field"])
			}
		})
	}

	resp := ts.api.Get("/api/v1/books", ann.auth())
	assert.Empty(t, decodeEnvelope[[]domain.Book](t, resp).Data, "rejected uploads leave no book behind")
}

func TestCreateBook_CoverTooLarge(t *testing.T) {
	ts := setupTestServer(t, Options{MaxUploadSize: 512})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")

	body, contentType := bookFormBody(t, map[string]string{
		"title":       "Dune",
		"description": strings.Repeat("s", 250),
	}, "cover.png")
	require.Greater(t, body.Len(), 512)

	resp := ts.api.Post("/api/v1/books", ann.auth(), "Content-Type: "+contentType, body)
	requireError(t, resp, http.StatusBadRequest, "VALIDATION", msgUploadTooLarge)
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")
	bo := ts.signUpAuthor(t, "bo@x.com", "Bo")
	book := ts.createBook(t, ann, "Northern Lights")

	form := "Content-Type: application/x-www-form-urlencoded"

	resp := ts.api.Put("/api/v1/books/"+book.ID, bo.auth(), form, strings.NewReader("title=Stolen"))
	requireError(t, resp, http.StatusForbidden, "FORBIDDEN", "User cannot update this book.")

	resp = ts.api.Put("/api/v1/books/"+book.ID, ann.auth(), form, strings.NewReader("title=The+Golden+Compass"))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeEnvelope[domain.Book](t, resp).Data
	assert.Equal(t, "The Golden Compass", updated.Title)
	assert.Equal(t, book.Description, updated.Description)
	assert.Equal(t, book.Cover, updated.Cover)

	resp = ts.api.Put("/api/v1/books/"+book.ID, ann.auth(), form, strings.NewReader("title=+++"))
	requireError(t, resp, http.StatusBadRequest, "VALIDATION", "Please input all fields.")

	body, contentType := bookFormBody(t, map[string]string{}, "new-cover.jpg")
	resp = ts.api.Put("/api/v1/books/"+book.ID, ann.auth(), "Content-Type: "+contentType, body)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	recovered := decodeEnvelope[domain.Book](t, resp).Data
	assert.NotEqual(t, book.Cover, recovered.Cover)

	oldName, ok := images.NameFromReference(book.Cover)
	require.True(t, ok)
	assert.False(t, ts.covers.Exists(oldName), "replaced cover is removed")

	resp = ts.api.Put("/api/v1/books/bok-missing", ann.auth(), form, strings.NewReader("title=Nope"))
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND", "Book's not found.")
}

func TestServeCover(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")
	book := ts.createBook(t, ann, "Northern Lights")

	resp := ts.api.Get(book.Cover)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	assert.Equal(t, CacheOneWeek, resp.Header().Get("Cache-Control"))
	etag := resp.Header().Get("ETag")
	require.NotEmpty(t, etag)

	resp = ts.api.Get(book.Cover, "If-None-Match: "+etag)
	assert.Equal(t, http.StatusNotModified, resp.Code)

	resp = ts.api.Get(images.ReferencePrefix + "missing.png")
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND", msgImageNotFound)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")
	bo := ts.signUpAuthor(t, "bo@x.com", "Bo")
	book := ts.createBook(t, ann, "Northern Lights")

	resp := ts.api.Delete("/api/v1/books/"+book.ID, bo.auth())
	requireError(t, resp, http.StatusForbidden, "FORBIDDEN", "User cannot delete this book.")

	resp = ts.api.Delete("/api/v1/books/"+book.ID, ann.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, book.ID, decodeEnvelope[domain.Book](t, resp).Data.ID)

	resp = ts.api.Get(book.Cover)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/books/"+book.ID, ann.auth())
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND", "Book's not found.")
}

func TestBookGenres(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")
	book := ts.createBook(t, ann, "Northern Lights")
	path := "/api/v1/books/" + book.ID + "/genres"

	resp := ts.api.Post(path, ann.auth(), map[string]any{"type": "Fantasy"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	genres := decodeEnvelope[[]domain.Genre](t, resp).Data
	require.Len(t, genres, 1)
	assert.Equal(t, "Fantasy", genres[0].Type)

	resp = ts.api.Post(path, ann.auth(), map[string]any{"type": "Fantasy"})
	requireError(t, resp, http.StatusConflict, "CONFLICT", "Genre is already attached to this book.")

	resp = ts.api.Post(path, ann.auth(), map[string]any{"type": "Cookbooks"})
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND", "Genre's not found.")

	resp = ts.api.Get(path, ann.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[[]domain.Genre](t, resp).Data, 1)

	resp = ts.api.Delete(path+"/"+genres[0].ID, ann.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[[]domain.Genre](t, resp).Data)

	resp = ts.api.Delete(path+"/"+genres[0].ID, ann.auth())
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND", "Invalid book_id or genre_id.")
}

func TestReviews(t *testing.T) {
	ts := setupTestServer(t, Options{})
	ann := ts.signUpAuthor(t, "ann@x.com", "Ann")
	bo := ts.signUp(t, "bo@x.com", "Bo")
	book := ts.createBook(t, ann, "Northern Lights")
	path := "/api/v1/books/" + book.ID + "/reviews"

	review := func(star int) map[string]any {
		return map[string]any{
			"content":  "Loved the armoured bears.",
			"overview": "Great",
			"star":     star,
			"started":  "2024-01-02",
			"finished": "2024-02-03",
		}
	}

	resp := ts.api.Post(path, bo.auth(), review(5))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	first := decodeEnvelope[domain.Review](t, resp).Data
	assert.Equal(t, bo.ID, first.UserID)
	assert.Equal(t, book.ID, first.BookID)

	resp = ts.api.Post(path, ann.auth(), review(2))
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	bad := review(5)
	bad["finished"] = "last week"
	resp = ts.api.Post(path, bo.auth(), bad)
	env := requireError(t, resp, http.StatusBadRequest, "VALIDATION", "Invalid finishing date.")
	assert.Equal(t, "finished", env.Details["field"])

	resp = ts.api.Post(path, bo.auth(), review(6))
	requireError(t, resp, http.StatusBadRequest, "VALIDATION", "Star must be in between 0 to 5 stars.")

	resp = ts.api.Get(path, bo.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[[]domain.Review](t, resp).Data, 2)

	resp = ts.api.Get(path+"/summary", bo.auth())
	require.Equal(t, http.StatusOK, resp.Code)
	summary := decodeEnvelope[domain.ReviewSummary](t, resp).Data
	assert.Equal(t, 2, summary.Total)
	assert.InDelta(t, 3.5, summary.Average, 0.001)
	assert.Equal(t, 1, summary.Positive)
	assert.Equal(t, 1, summary.Negative)

	edit := review(4)
	edit["overview"] = "Still great"
	resp = ts.api.Put(path+"/"+first.ID, bo.auth(), edit)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 4, decodeEnvelope[domain.Review](t, resp).Data.Star)

	resp = ts.api.Delete(path+"/"+first.ID, bo.auth())
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Delete(path+"/"+first.ID, bo.auth())
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND", "Review's not found.")

	resp = ts.api.Get("/api/v1/books/bok-missing/reviews", bo.auth())
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND", "Book's not found.")
}
