package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vivilio/vivilio-server/internal/auth"
	"github.com/vivilio/vivilio-server/internal/domain"
	"github.com/vivilio/vivilio-server/internal/media/images"
	"github.com/vivilio/vivilio-server/internal/search"
	"github.com/vivilio/vivilio-server/internal/service"
	"github.com/vivilio/vivilio-server/internal/store/sqlite"
)

// testEnvelope decodes any API response.
type testEnvelope[T any] struct {
	Version int            `json:"v"`
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

type testServer struct {
	*Server
	api    humatest.TestAPI
	store  *sqlite.Store
	covers *images.Storage
}

// testUser is a registered account with a valid token.
type testUser struct {
	ID    string
	Token string
}

func (u testUser) auth() string {
	return "Authorization: Bearer " + u.Token
}

func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := sqlite.Open(filepath.Join(dir, "vivilio.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	covers, err := images.NewStorage(dir, "covers", 1<<20)
	require.NoError(t, err)

	idx, err := search.NewIndex(search.Options{DataPath: dir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, time.Hour)
	require.NoError(t, err)
	hasher := auth.NewHasher(auth.Params{Memory: 1024, Iterations: 1, Parallelism: 1})

	deps := service.Deps{Store: st, Index: idx, Logger: logger}
	services := &Services{
		Auth:      service.NewAuthService(deps, hasher, tokens),
		Profile:   service.NewProfileService(deps),
		Book:      service.NewBookService(deps, covers),
		Review:    service.NewReviewService(deps),
		Community: service.NewCommunityService(deps),
		Content:   service.NewContentService(deps),
		Search:    service.NewSearchService(deps, idx),
	}

	if opts.AuthRatePerMinute == 0 {
		opts.AuthRatePerMinute = 1000
	}
	srv := NewServer(st, services, covers, opts, logger)
	t.Cleanup(srv.Close)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.api),
		store:  st,
		covers: covers,
	}
}

func decodeEnvelope[T any](t *testing.T, resp *httptest.ResponseRecorder) testEnvelope[T] {
	t.Helper()
	var env testEnvelope[T]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	require.Equal(t, EnvelopeVersion, env.Version, "every response carries the envelope version")
	return env
}

// requireError checks status, code and message of a failed response.
func requireError(t *testing.T, resp *httptest.ResponseRecorder, status int, code, message string) testEnvelope[any] {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())
	env := decodeEnvelope[any](t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, code, env.Code)
	assert.Equal(t, message, env.Message)
	return env
}

func (ts *testServer) signUp(t *testing.T, email, name string) testUser {
	t.Helper()

	resp := ts.api.Post("/api/v1/users", map[string]any{
		"email":    email,
		"name":     name,
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	user := decodeEnvelope[domain.User](t, resp).Data

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    email,
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	login := decodeEnvelope[service.LoginResponse](t, resp).Data

	return testUser{ID: user.ID, Token: login.AccessToken}
}

func (ts *testServer) signUpAuthor(t *testing.T, email, name string) testUser {
	t.Helper()
	u := ts.signUp(t, email, name)
	resp := ts.api.Patch("/api/v1/users/me", u.auth(), map[string]any{"is_author": true})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	return u
}

func (ts *testServer) createBook(t *testing.T, author testUser, title string) domain.Book {
	t.Helper()
	body, contentType := bookFormBody(t, map[string]string{
		"title":       title,
		"description": "A book called " + title,
	}, "cover.png")

	resp := ts.api.Post("/api/v1/books", author.auth(), "Content-Type: "+contentType, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeEnvelope[domain.Book](t, resp).Data
}

func (ts *testServer) createCommunity(t *testing.T, creator testUser, name string) service.CommunityDetails {
	t.Helper()
	resp := ts.api.Post("/api/v1/communities", creator.auth(), map[string]any{
		"name":             name,
		"description":      "We read together.",
		"restrict_posting": false,
		"visibility":       "Public",
		"category":         "Fiction",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeEnvelope[service.CommunityDetails](t, resp).Data
}

// bookFormBody builds a multipart body. An empty coverName sends no file.
func bookFormBody(t *testing.T, fields map[string]string, coverName string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if coverName != "" {
		fw, err := mw.CreateFormFile("cover", coverName)
		require.NoError(t, err)
		require.NoError(t, png.Encode(fw, testImage()))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func testImage() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 120, A: 255})
		}
	}
	return img
}

func TestOpenAPIDocument(t *testing.T) {
	ts := setupTestServer(t, Options{})

	resp := ts.api.Get("/openapi.json")
	require.Equal(t, http.StatusOK, resp.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/communities/{id}/members")
	assert.Contains(t, paths, "/api/v1/search")
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := setupTestServer(t, Options{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/users/me"},
		{http.MethodGet, "/api/v1/books"},
		{http.MethodPost, "/api/v1/books"},
		{http.MethodGet, "/api/v1/communities/joined"},
		{http.MethodGet, "/api/v1/search?query=x"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp := ts.api.Do(tt.method, tt.path, "Authorization: Bearer not-a-token")
			requireError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED", msgAuthRequired)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t, Options{CORSOrigins: []string{"https://vivilio.app"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/books", nil)
	req.Header.Set("Origin", "https://vivilio.app")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "https://vivilio.app", w.Header().Get("Access-Control-Allow-Origin"))
}
