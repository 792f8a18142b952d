package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// SearchLogPurger apaga histórico anterior a um corte.
type SearchLogPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionWorker apaga periodicamente as consultas mais antigas que a janela de retenção.
type RetentionWorker struct {
	repo         SearchLogPurger
	retention    time.Duration
	tickInterval time.Duration
	logger       logrus.FieldLogger
	now          func() time.Time
}

func NewRetentionWorker(repo SearchLogPurger, retention, tickInterval time.Duration, logger logrus.FieldLogger) *RetentionWorker {
	return &RetentionWorker{
		repo:         repo,
		retention:    retention,
		tickInterval: tickInterval,
		logger:       logger.WithField("component", "retention_worker"),
		now:          time.Now,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	w.logger.WithField("retention", w.retention.String()).Info("🕒 Limpeza do histórico iniciada")

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	w.purge(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("⚠️ Limpeza do histórico encerrada")
			return
		case <-ticker.C:
			w.purge(ctx)
		}
	}
}

func (w *RetentionWorker) purge(ctx context.Context) {
	cutoff := w.now().Add(-w.retention)

	deleted, err := w.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		w.logger.WithError(err).Error("❌ Erro ao limpar histórico de consultas")
		return
	}

	if deleted > 0 {
		w.logger.WithFields(logrus.Fields{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("✅ Consultas antigas removidas")
	}
}
