package usecase

import (
	"context"
	"time"

	"github.com/tetraeducacao/leadtracker/internal/entity"
)

// LeadLookup é o webhook que de fato procura o lead.
type LeadLookup interface {
	Lookup(ctx context.Context, searchValue string, searchType entity.SearchType) (any, error)
}

// LeadCache guarda leads já normalizados (opcional).
type LeadCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}

// SearchLogRecorder recebe o histórico das buscas (fila ou banco).
type SearchLogRecorder interface {
	Record(ctx context.Context, log *entity.SearchLog) error
}

// RecorderFunc adapta uma função comum (ex.: repo.Create) para SearchLogRecorder.
type RecorderFunc func(ctx context.Context, log *entity.SearchLog) error

func (f RecorderFunc) Record(ctx context.Context, log *entity.SearchLog) error {
	return f(ctx, log)
}

// SearchMetrics recebe o resultado de cada busca para as métricas.
type SearchMetrics interface {
	ObserveSearch(searchType entity.SearchType, outcome string, elapsed time.Duration)
}

// LeadSearcher é o que a sessão da tela precisa para buscar.
type LeadSearcher interface {
	Execute(ctx context.Context, input SearchLeadInput) (*entity.Lead, error)
}
