package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/tetraeducacao/leadtracker/internal/entity"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// SearchLogLister é a leitura do histórico de consultas.
type SearchLogLister interface {
	ListRecent(ctx context.Context, limit int) ([]entity.SearchLog, error)
}

type HistoryResponse struct {
	Success bool               `json:"success"`
	Data    []entity.SearchLog `json:"data,omitempty"`
	Error   string             `json:"error,omitempty"`
}

type HistoryHandler struct {
	Repo   SearchLogLister
	Logger logrus.FieldLogger
}

// NewHistoryHandler aceita repo nil: sem banco a rota responde 503.
func NewHistoryHandler(repo SearchLogLister, logger logrus.FieldLogger) *HistoryHandler {
	return &HistoryHandler{Repo: repo, Logger: logger}
}

// Handle (GET /api/consultas?limite=N)
func (h *HistoryHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Repo == nil {
		writeJSON(w, http.StatusServiceUnavailable, HistoryResponse{Error: "Histórico de consultas não configurado"})
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limite"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, HistoryResponse{Error: "limite deve ser um número positivo"})
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	logs, err := h.Repo.ListRecent(r.Context(), limit)
	if err != nil {
		h.Logger.WithError(err).Error("❌ Falha ao listar histórico de consultas")
		writeJSON(w, http.StatusInternalServerError, HistoryResponse{Error: "Falha ao listar histórico"})
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{Success: true, Data: logs})
}
