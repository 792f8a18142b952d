package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetraeducacao/leadtracker/internal/entity"
	"github.com/tetraeducacao/leadtracker/internal/infra/http/handlers"
	mw "github.com/tetraeducacao/leadtracker/internal/infra/http/middleware"
	"github.com/tetraeducacao/leadtracker/internal/usecase"
	"github.com/tetraeducacao/leadtracker/internal/view"
)

type stubSearcher struct{}

func (stubSearcher) Execute(ctx context.Context, input usecase.SearchLeadInput) (*entity.Lead, error) {
	return &entity.Lead{ID: "lead-1", Nome: input.SearchValue}, nil
}

func newTestRouter(t *testing.T, limiter *mw.RateLimiter) http.Handler {
	t.Helper()
	logger, _ := test.NewNullLogger()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	searcher := stubSearcher{}
	return New(Handlers{
		Page:    handlers.NewPageHandler(usecase.NewSessionStore(searcher, time.Hour), renderer, logger, false),
		Search:  handlers.NewSearchHandler(searcher, logger),
		History: handlers.NewHistoryHandler(nil, logger),
		Health:  handlers.NewHealthHandler(nil, nil, nil, "https://example.com/webhook"),
	}, Options{
		AllowedOrigins: []string{"*"},
		RateLimiter:    limiter,
		RequestTimeout: 5 * time.Second,
		Logger:         logger,
	})
}

func TestRouterRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/", "", http.StatusOK},
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/api/consultas", "", http.StatusServiceUnavailable},
		{http.MethodPost, "/api/leads/search", `{"searchValue":"Maria","searchType":"nome"}`, http.StatusOK},
		{http.MethodPost, "/nova-busca", "", http.StatusSeeOther},
		{http.MethodGet, "/nao-existe", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouterRateLimitsSearchOnly(t *testing.T) {
	r := newTestRouter(t, mw.NewRateLimiter(1, 1))

	search := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/leads/search", strings.NewReader(`{"searchValue":"Maria","searchType":"nome"}`))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, search())
	assert.Equal(t, http.StatusTooManyRequests, search())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRateLimitedFormRedirectsToAlert(t *testing.T) {
	r := newTestRouter(t, mw.NewRateLimiter(1, 1))

	var cookie *http.Cookie
	submit := func() *httptest.ResponseRecorder {
		form := url.Values{"searchValue": {"Maria"}, "searchType": {"nome"}}
		req := httptest.NewRequest(http.MethodPost, "/buscar", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		for _, c := range rec.Result().Cookies() {
			if c.Name == handlers.SessionCookieName {
				cookie = c
			}
		}
		return rec
	}

	assert.Equal(t, http.StatusSeeOther, submit().Code)

	rec := submit()
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.NotContains(t, rec.Header().Get("Content-Type"), "application/json")

	require.NotNil(t, cookie)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	page := httptest.NewRecorder()
	r.ServeHTTP(page, req)

	assert.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), mw.RateLimitMessage)
}
