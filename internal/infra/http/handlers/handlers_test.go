package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tetraeducacao/leadtracker/internal/entity"
	"github.com/tetraeducacao/leadtracker/internal/infra/http/middleware"
	"github.com/tetraeducacao/leadtracker/internal/usecase"
	"github.com/tetraeducacao/leadtracker/internal/view"
)

// MockLeadSearcher
type MockLeadSearcher struct {
	mock.Mock
}

func (m *MockLeadSearcher) Execute(ctx context.Context, input usecase.SearchLeadInput) (*entity.Lead, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

// MockSearchLogLister
type MockSearchLogLister struct {
	mock.Mock
}

func (m *MockSearchLogLister) ListRecent(ctx context.Context, limit int) ([]entity.SearchLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.SearchLog), args.Error(1)
}

func sampleLead() *entity.Lead {
	lead := &entity.Lead{
		ID:              "lead-1",
		Nome:            "Maria Souza",
		Email:           "maria@example.com",
		OrigemCampanha:  "black-friday",
		CadastroLanding: true,
		EntradaWhatsapp: true,
	}
	lead.PresencaLives.Set(1, true)
	return lead
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, SearchResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/leads/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestSearchHandlerFound(t *testing.T) {
	searcher := new(MockLeadSearcher)
	searcher.On("Execute", mock.Anything, usecase.SearchLeadInput{SearchValue: "maria@example.com", SearchType: entity.SearchByEmail}).
		Return(sampleLead(), nil).Once()

	logger, _ := test.NewNullLogger()
	h := NewSearchHandler(searcher, logger)

	rec, resp := postJSON(t, h.Handle, `{"searchValue":"maria@example.com","searchType":"email"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Data)
	assert.Equal(t, "Maria Souza", resp.Data.Nome)
	assert.Equal(t, 50, resp.Data.Progress)
	assert.Contains(t, rec.Body.String(), `"presenca_lives":{"live1":true,"live2":false,"live3":false,"live4":false}`)
}

func TestSearchHandlerErrors(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		lead      *entity.Lead
		err       error
		wantCode  int
		wantError string
	}{
		{
			name:      "não encontrado",
			body:      `{"searchValue":"ninguem","searchType":"nome"}`,
			wantCode:  http.StatusNotFound,
			wantError: "Lead não encontrado",
		},
		{
			name:      "busca inválida",
			body:      `{"searchValue":"","searchType":"nome"}`,
			err:       &usecase.DomainError{Code: "VALIDATION_ERROR", Message: "Busca inválida: searchValue: informe o nome, email ou telefone do lead"},
			wantCode:  http.StatusBadRequest,
			wantError: "Busca inválida: searchValue: informe o nome, email ou telefone do lead",
		},
		{
			name:      "webhook fora do ar",
			body:      `{"searchValue":"Maria","searchType":"nome"}`,
			err:       &usecase.TechnicalError{Code: "WEBHOOK_UNAVAILABLE", Message: "Não foi possível conectar ao serviço de busca. Tente novamente."},
			wantCode:  http.StatusBadGateway,
			wantError: "Não foi possível conectar ao serviço de busca. Tente novamente.",
		},
		{
			name:      "erro desconhecido",
			body:      `{"searchValue":"Maria","searchType":"nome"}`,
			err:       errors.New("boom"),
			wantCode:  http.StatusInternalServerError,
			wantError: "Erro desconhecido",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := new(MockLeadSearcher)
			searcher.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			logger, _ := test.NewNullLogger()
			rec, resp := postJSON(t, NewSearchHandler(searcher, logger).Handle, tt.body)

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.False(t, resp.Success)
			assert.Nil(t, resp.Data)
			assert.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestSearchHandlerInvalidJSON(t *testing.T) {
	searcher := new(MockLeadSearcher)
	logger, _ := test.NewNullLogger()

	rec, resp := postJSON(t, NewSearchHandler(searcher, logger).Handle, `{"searchValue":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "JSON inválido", resp.Error)
	searcher.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func newPageHandler(t *testing.T, searcher usecase.LeadSearcher) *PageHandler {
	t.Helper()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	return NewPageHandler(usecase.NewSessionStore(searcher, time.Hour), renderer, logger, false)
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatalf("cookie %s não foi definido", SessionCookieName)
	return nil
}

func getPage(h *PageHandler, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.Index(rec, req)
	return rec
}

func postForm(h http.HandlerFunc, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestPageIndexStartsIdleAndSetsCookie(t *testing.T) {
	h := newPageHandler(t, new(MockLeadSearcher))

	rec := getPage(h, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Pronto para Buscar")
	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)

	again := getPage(h, cookie)
	assert.Empty(t, again.Result().Cookies(), "sessão existente não recebe cookie novo")
}

func TestPageSearchFlow(t *testing.T) {
	searcher := new(MockLeadSearcher)
	searcher.On("Execute", mock.Anything, usecase.SearchLeadInput{SearchValue: "Maria", SearchType: entity.SearchByName}).
		Return(sampleLead(), nil).Once()
	searcher.On("Execute", mock.Anything, usecase.SearchLeadInput{SearchValue: "Ninguém", SearchType: entity.SearchByName}).
		Return(nil, nil).Once()

	h := newPageHandler(t, searcher)
	cookie := sessionCookie(t, getPage(h, nil))

	rec := postForm(h.Search, "/buscar", url.Values{"searchValue": {"Maria"}, "searchType": {"nome"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	page := getPage(h, cookie).Body.String()
	assert.Contains(t, page, `id="lead-card"`)
	assert.Contains(t, page, "Maria Souza")
	assert.Contains(t, page, "50%")

	postForm(h.Search, "/buscar", url.Values{"searchValue": {"Ninguém"}, "searchType": {"nome"}}, cookie)
	page = getPage(h, cookie).Body.String()
	assert.Contains(t, page, "Nenhum lead encontrado")
	assert.NotContains(t, page, `id="lead-card"`)

	rec = postForm(h.Reset, "/nova-busca", nil, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, getPage(h, cookie).Body.String(), "Pronto para Buscar")

	searcher.AssertExpectations(t)
}

func TestPageSearchShowsError(t *testing.T) {
	searcher := new(MockLeadSearcher)
	searcher.On("Execute", mock.Anything, mock.Anything).
		Return(nil, &usecase.TechnicalError{Code: "WEBHOOK_ERROR", Message: "O serviço de busca respondeu com erro (status 500)."}).Once()

	h := newPageHandler(t, searcher)
	cookie := sessionCookie(t, getPage(h, nil))

	postForm(h.Search, "/buscar", url.Values{"searchValue": {"Maria"}, "searchType": {"nome"}}, cookie)
	page := getPage(h, cookie).Body.String()

	assert.Contains(t, page, `role="alert"`)
	assert.Contains(t, page, "O serviço de busca respondeu com erro (status 500).")
}

func TestPageThrottledShowsAlertWithoutSearching(t *testing.T) {
	searcher := new(MockLeadSearcher)
	h := newPageHandler(t, searcher)
	cookie := sessionCookie(t, getPage(h, nil))

	rec := postForm(h.Throttled, "/buscar", url.Values{"searchValue": {"Maria"}, "searchType": {"nome"}}, cookie)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	body := getPage(h, cookie).Body.String()
	assert.Contains(t, body, middleware.RateLimitMessage)
	assert.Contains(t, body, `role="alert"`)
	assert.Contains(t, body, `value="Maria"`)
	searcher.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestPageSessionsAreIsolated(t *testing.T) {
	searcher := new(MockLeadSearcher)
	searcher.On("Execute", mock.Anything, mock.Anything).Return(sampleLead(), nil).Once()

	h := newPageHandler(t, searcher)
	first := sessionCookie(t, getPage(h, nil))
	second := sessionCookie(t, getPage(h, nil))
	require.NotEqual(t, first.Value, second.Value)

	postForm(h.Search, "/buscar", url.Values{"searchValue": {"Maria"}, "searchType": {"nome"}}, first)

	assert.Contains(t, getPage(h, first).Body.String(), "Maria Souza")
	assert.Contains(t, getPage(h, second).Body.String(), "Pronto para Buscar")
}

func TestHistoryHandler(t *testing.T) {
	logger, _ := test.NewNullLogger()
	logs := []entity.SearchLog{{ID: "log-1", SearchType: entity.SearchByEmail, SearchValue: "maria@example.com", Found: true}}

	t.Run("sem banco", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHistoryHandler(nil, logger).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/consultas", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("limite padrão", func(t *testing.T) {
		repo := new(MockSearchLogLister)
		repo.On("ListRecent", mock.Anything, 20).Return(logs, nil).Once()

		rec := httptest.NewRecorder()
		NewHistoryHandler(repo, logger).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/consultas", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp HistoryResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, "log-1", resp.Data[0].ID)
		repo.AssertExpectations(t)
	})

	t.Run("limite acima do máximo", func(t *testing.T) {
		repo := new(MockSearchLogLister)
		repo.On("ListRecent", mock.Anything, 100).Return([]entity.SearchLog{}, nil).Once()

		rec := httptest.NewRecorder()
		NewHistoryHandler(repo, logger).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/consultas?limite=500", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		repo.AssertExpectations(t)
	})

	t.Run("limite inválido", func(t *testing.T) {
		repo := new(MockSearchLogLister)
		rec := httptest.NewRecorder()
		NewHistoryHandler(repo, logger).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/consultas?limite=abc", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		repo.AssertNotCalled(t, "ListRecent", mock.Anything, mock.Anything)
	})

	t.Run("falha no banco", func(t *testing.T) {
		repo := new(MockSearchLogLister)
		repo.On("ListRecent", mock.Anything, 5).Return(nil, errors.New("db fora do ar")).Once()

		rec := httptest.NewRecorder()
		NewHistoryHandler(repo, logger).Handle(rec, httptest.NewRequest(http.MethodGet, "/api/consultas?limite=5", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("sem dependências", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil, nil, nil, "https://example.com/webhook").Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "not configured", resp.Dependencies["database"])
		assert.Equal(t, "configured", resp.Dependencies["jornada_webhook"])
	})

	t.Run("dependência fora do ar", func(t *testing.T) {
		down := PingerFunc(func(ctx context.Context) error { return errors.New("connection refused") })
		up := PingerFunc(func(ctx context.Context) error { return nil })

		rec := httptest.NewRecorder()
		NewHealthHandler(nil, up, down, "https://example.com/webhook").Handle(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp.Status)
		assert.Equal(t, "healthy", resp.Dependencies["rabbitmq"])
		assert.Equal(t, "unhealthy: connection refused", resp.Dependencies["redis"])
	})
}
