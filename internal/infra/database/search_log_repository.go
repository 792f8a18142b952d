package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tetraeducacao/leadtracker/internal/entity"
)

const createSearchLogsTable = `
	CREATE TABLE IF NOT EXISTS search_logs (
		id           UUID PRIMARY KEY,
		search_type  TEXT        NOT NULL,
		search_value TEXT        NOT NULL,
		found        BOOLEAN     NOT NULL DEFAULT FALSE,
		lead_id      TEXT,
		progress     INTEGER     NOT NULL DEFAULT 0,
		error        TEXT,
		duration_ms  BIGINT      NOT NULL DEFAULT 0,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_search_logs_created_at ON search_logs (created_at DESC);
`

type SearchLogRepository struct {
	DB *sql.DB
}

func NewSearchLogRepository(db *sql.DB) *SearchLogRepository {
	return &SearchLogRepository{DB: db}
}

// EnsureSchema cria a tabela do histórico se ainda não existir.
func (r *SearchLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.DB.ExecContext(ctx, createSearchLogsTable); err != nil {
		return fmt.Errorf("falha ao criar tabela search_logs: %w", err)
	}
	return nil
}

// Create grava a consulta. Reentrega da fila com o mesmo ID não duplica.
func (r *SearchLogRepository) Create(ctx context.Context, log *entity.SearchLog) error {
	query := `
		INSERT INTO search_logs (
			id, search_type, search_value, found, lead_id, progress, error, duration_ms, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := r.DB.ExecContext(
		ctx,
		query,
		log.ID,
		string(log.SearchType),
		log.SearchValue,
		log.Found,
		nullString(log.LeadID),
		log.Progress,
		nullString(log.Error),
		log.DurationMs,
		log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("falha ao gravar consulta %s: %w", log.ID, err)
	}

	return nil
}

// ListRecent devolve as últimas consultas, mais recentes primeiro.
func (r *SearchLogRepository) ListRecent(ctx context.Context, limit int) ([]entity.SearchLog, error) {
	query := `
		SELECT id, search_type, search_value, found, COALESCE(lead_id, ''), progress,
		       COALESCE(error, ''), duration_ms, created_at
		FROM search_logs
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("falha ao listar consultas: %w", err)
	}
	defer rows.Close()

	logs := make([]entity.SearchLog, 0, limit)
	for rows.Next() {
		var log entity.SearchLog
		var searchType string
		if err := rows.Scan(
			&log.ID,
			&searchType,
			&log.SearchValue,
			&log.Found,
			&log.LeadID,
			&log.Progress,
			&log.Error,
			&log.DurationMs,
			&log.CreatedAt,
		); err != nil {
			return nil, err
		}
		log.SearchType = entity.SearchType(searchType)
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

// DeleteOlderThan apaga o histórico anterior ao corte e devolve quantas linhas saíram.
func (r *SearchLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM search_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("falha ao limpar histórico: %w", err)
	}
	return result.RowsAffected()
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
