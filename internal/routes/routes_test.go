package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/lkhn/wealth-backend/internal/auth"
	"github.com/lkhn/wealth-backend/internal/handlers"
)

func newRouter(opts Options) chi.Router {
	h := &handlers.Handler{Tokens: auth.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour)}
	r := chi.NewRouter()
	SetupRoutes(r, h, opts)
	return r
}

func TestHealth(t *testing.T) {
	r := newRouter(Options{})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := newRouter(Options{})
	for _, path := range []string{"/api/admin/feedback", "/api/admin/waitlist"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestUserTokenCannotReadAdminData(t *testing.T) {
	h := &handlers.Handler{Tokens: auth.NewIssuer("0123456789abcdef0123456789abcdef", time.Hour)}
	r := chi.NewRouter()
	SetupRoutes(r, h, Options{})

	token, _, err := h.Tokens.Sign("user-1", auth.RoleUser, true)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/waitlist", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWriteLimitWrapsPublicWrites(t *testing.T) {
	var limited []string
	block := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited = append(limited, r.URL.Path)
			w.WriteHeader(http.StatusTooManyRequests)
		})
	}
	r := newRouter(Options{WriteLimit: block})

	for _, path := range []string{"/api/feedback", "/api/waitlist", "/functions/sendFeedback"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, path)
	}
	assert.Len(t, limited, 3)
}

func TestMetricsMounted(t *testing.T) {
	r := newRouter(Options{Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "metrics", rec.Body.String())
}
