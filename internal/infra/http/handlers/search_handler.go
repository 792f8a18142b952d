package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/tetraeducacao/leadtracker/internal/usecase"
)

const maxRequestBody = 1 << 20

// SearchResponse segue o envelope {success, data, error} que o front sempre usou.
type SearchResponse struct {
	Success bool                `json:"success"`
	Data    *usecase.LeadOutput `json:"data,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type SearchHandler struct {
	Searcher usecase.LeadSearcher
	Logger   logrus.FieldLogger
}

func NewSearchHandler(searcher usecase.LeadSearcher, logger logrus.FieldLogger) *SearchHandler {
	return &SearchHandler{Searcher: searcher, Logger: logger}
}

// Handle (POST /api/leads/search)
func (h *SearchHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SearchLeadInput

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, SearchResponse{Error: "JSON inválido"})
		return
	}

	lead, err := h.Searcher.Execute(r.Context(), input)
	if err != nil {
		writeJSON(w, statusFor(err), SearchResponse{Error: usecase.ErrorMessage(err)})
		return
	}

	if lead == nil {
		writeJSON(w, http.StatusNotFound, SearchResponse{Error: "Lead não encontrado"})
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{Success: true, Data: usecase.NewLeadOutput(lead)})
}

func statusFor(err error) int {
	var domainErr *usecase.DomainError
	if errors.As(err, &domainErr) {
		return http.StatusBadRequest
	}
	var techErr *usecase.TechnicalError
	if errors.As(err, &techErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
