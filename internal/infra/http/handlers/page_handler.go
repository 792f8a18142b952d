package handlers

import (
	"bytes"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tetraeducacao/leadtracker/internal/entity"
	"github.com/tetraeducacao/leadtracker/internal/infra/http/middleware"
	"github.com/tetraeducacao/leadtracker/internal/usecase"
	"github.com/tetraeducacao/leadtracker/internal/view"
)

// SessionCookieName identifica a tela (navegador) do vendedor.
const SessionCookieName = "lt_sessao"

type PageHandler struct {
	Sessions     *usecase.SessionStore
	Renderer     *view.Renderer
	Logger       logrus.FieldLogger
	SecureCookie bool
}

func NewPageHandler(sessions *usecase.SessionStore, renderer *view.Renderer, logger logrus.FieldLogger, secureCookie bool) *PageHandler {
	return &PageHandler{
		Sessions:     sessions,
		Renderer:     renderer,
		Logger:       logger,
		SecureCookie: secureCookie,
	}
}

// Index (GET /)
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	var buf bytes.Buffer
	if err := h.Renderer.Render(&buf, view.NewPage(session.Snapshot())); err != nil {
		h.Logger.WithError(err).Error("❌ Falha ao renderizar página")
		http.Error(w, "Erro ao montar a página", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Search (POST /buscar) busca pelo formulário e volta para a tela.
func (h *PageHandler) Search(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Formulário inválido", http.StatusBadRequest)
		return
	}

	session := h.session(w, r)
	searchType := entity.SearchType(r.PostForm.Get("searchType"))

	// O resultado (lead, vazio ou erro) fica no estado da sessão e aparece no GET.
	session.Search(r.Context(), r.PostForm.Get("searchValue"), searchType)

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Throttled recebe o POST /buscar recusado pelo limite por IP: a busca não sai,
// e a tela mostra o aviso no lugar do resultado.
func (h *PageHandler) Throttled(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	r.ParseForm()

	session := h.session(w, r)
	session.Fail(r.PostForm.Get("searchValue"), entity.SearchType(r.PostForm.Get("searchType")), middleware.RateLimitMessage)

	h.Logger.WithField("remote_addr", r.RemoteAddr).Warn("⚠️ Busca pelo formulário bloqueada pelo limite")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Reset (POST /nova-busca)
func (h *PageHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.session(w, r).Reset()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PageHandler) session(w http.ResponseWriter, r *http.Request) *usecase.SearchSession {
	var current string
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		current = cookie.Value
	}

	id, session := h.Sessions.GetOrCreate(current)
	if id != current {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.SecureCookie,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return session
}
