package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tetraeducacao/leadtracker/internal/entity"
)

// Publisher é a parte do *amqp.Channel usada para publicar.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// SearchLogProducer manda o histórico das buscas para a fila. Implementa usecase.SearchLogRecorder.
type SearchLogProducer struct {
	Ch Publisher
}

func NewSearchLogProducer(ch Publisher) *SearchLogProducer {
	return &SearchLogProducer{Ch: ch}
}

func (p *SearchLogProducer) Record(ctx context.Context, log *entity.SearchLog) error {
	body, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("erro ao converter consulta: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			MessageId:    log.ID,
			Timestamp:    log.CreatedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("falha ao publicar no RabbitMQ: %w", err)
	}

	return nil
}
