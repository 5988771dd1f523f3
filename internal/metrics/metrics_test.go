package metrics

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/vivilio/vivilio-server/internal/errors"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	reg := New()

	router := chi.NewRouter()
	router.Use(reg.Middleware)
	router.Get("/api/v1/books/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"book-a", "book-b"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/books/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	body := scrape(t, reg)
	assert.Contains(t, body,
		`vivilio_http_requests_total{method="GET",route="/api/v1/books/{id}",status="404"} 2`)
	assert.NotContains(t, body, "book-a")
}

func TestObserveOperation(t *testing.T) {
	reg := New()

	reg.ObserveOperation("create_community", nil)
	reg.ObserveOperation("create_community", domainerrors.Conflict("Community name is already taken."))
	reg.ObserveOperation("create_community", fmt.Errorf("disk"))

	body := scrape(t, reg)
	assert.Contains(t, body, `vivilio_domain_operations_total{operation="create_community",outcome="ok"} 1`)
	assert.Contains(t, body, `vivilio_domain_operations_total{operation="create_community",outcome="conflict"} 1`)
	assert.Contains(t, body, `vivilio_domain_operations_total{operation="create_community",outcome="internal"} 1`)
}

func TestNilRegistryIsNoop(t *testing.T) {
	var reg *Registry
	assert.NotPanics(t, func() {
		reg.ObserveOperation("x", nil)
		reg.SetSearchDocuments(3)
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(domainerrors.NotFound("Book's not found.")))
}
