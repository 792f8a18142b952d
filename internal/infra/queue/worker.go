package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/tetraeducacao/leadtracker/internal/entity"
)

// Consumer é a parte do *amqp.Channel usada para consumir.
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// SearchLogStore é onde o worker grava o que chega da fila.
type SearchLogStore interface {
	Create(ctx context.Context, log *entity.SearchLog) error
}

type SearchLogWorker struct {
	Channel Consumer
	Store   SearchLogStore
	Logger  logrus.FieldLogger
}

func NewSearchLogWorker(ch Consumer, store SearchLogStore, logger logrus.FieldLogger) *SearchLogWorker {
	return &SearchLogWorker{
		Channel: ch,
		Store:   store,
		Logger:  logger.WithField("component", "search_log_worker"),
	}
}

// Start consome a fila até o ctx ser cancelado ou o canal fechar.
func (w *SearchLogWorker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	w.Logger.WithField("queue", queueName).Info(" [*] Worker rodando e aguardando consultas")

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("Canal de consumo fechado")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *SearchLogWorker) handle(ctx context.Context, d amqp.Delivery) {
	var log entity.SearchLog
	if err := json.Unmarshal(d.Body, &log); err != nil || log.ID == "" {
		w.Logger.WithError(err).Error("❌ [WORKER] Mensagem inválida, mandando pra DLQ")
		d.Nack(false, false)
		return
	}

	entry := w.Logger.WithFields(logrus.Fields{
		"search_log_id": log.ID,
		"search_type":   log.SearchType,
		"found":         log.Found,
	})

	if err := w.Store.Create(ctx, &log); err != nil {
		// Primeira falha volta pra fila; na reentrega vai pra DLQ.
		requeue := !d.Redelivered
		entry.WithError(err).WithField("requeue", requeue).Error("❌ [WORKER] Falha ao gravar consulta")
		d.Nack(false, requeue)
		return
	}

	entry.Debug("✅ [WORKER] Consulta gravada")
	d.Ack(false)
}
