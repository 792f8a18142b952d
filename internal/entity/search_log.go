package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchLog registra uma consulta feita pelo time comercial (não guarda o lead em si).
type SearchLog struct {
	ID          string     `json:"id"`
	SearchType  SearchType `json:"search_type"`
	SearchValue string     `json:"search_value"`
	Found       bool       `json:"found"`
	LeadID      string     `json:"lead_id,omitempty"`
	Progress    int        `json:"progress"`
	Error       string     `json:"error,omitempty"`
	DurationMs  int64      `json:"duration_ms"`
	CreatedAt   time.Time  `json:"created_at"`
}

type SearchLogRepository interface {
	Create(ctx context.Context, log *SearchLog) error
	ListRecent(ctx context.Context, limit int) ([]SearchLog, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewSearchLog cria o registro com ID e timestamp.
func NewSearchLog(searchType SearchType, searchValue string, lead *Lead, searchErr error, elapsed time.Duration) *SearchLog {
	log := &SearchLog{
		ID:          uuid.New().String(),
		SearchType:  searchType,
		SearchValue: searchValue,
		DurationMs:  elapsed.Milliseconds(),
		CreatedAt:   time.Now(),
	}

	if lead != nil {
		log.Found = true
		log.LeadID = lead.ID
		log.Progress = lead.Progress()
	}
	if searchErr != nil {
		log.Error = searchErr.Error()
	}

	return log
}
