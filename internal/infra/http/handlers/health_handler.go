package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"
)

// Pinger é qualquer dependência que sabe dizer se está de pé.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapta uma função comum para Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	DB         *sql.DB
	RabbitMQ   Pinger
	Cache      Pinger
	WebhookURL string
	StartTime  time.Time
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version"`
	Uptime       string            `json:"uptime"`
	Dependencies map[string]string `json:"dependencies"`
}

// NewHealthHandler aceita dependências nil: aparecem como "not configured".
func NewHealthHandler(db *sql.DB, rabbitMQ, cache Pinger, webhookURL string) *HealthHandler {
	return &HealthHandler{
		DB:         db,
		RabbitMQ:   rabbitMQ,
		Cache:      cache,
		WebhookURL: webhookURL,
		StartTime:  time.Now(),
	}
}

func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]string)

	if h.DB != nil {
		deps["database"] = check(ctx, PingerFunc(h.DB.PingContext))
	} else {
		deps["database"] = "not configured"
	}

	if h.RabbitMQ != nil {
		deps["rabbitmq"] = check(ctx, h.RabbitMQ)
	} else {
		deps["rabbitmq"] = "not configured"
	}

	if h.Cache != nil {
		deps["redis"] = check(ctx, h.Cache)
	} else {
		deps["redis"] = "not configured"
	}

	if h.WebhookURL != "" {
		deps["jornada_webhook"] = "configured"
	} else {
		deps["jornada_webhook"] = "not configured"
	}

	status := "healthy"
	for _, v := range deps {
		if v != "healthy" && v != "configured" && v != "not configured" {
			status = "degraded"
			break
		}
	}

	response := HealthResponse{
		Status:       status,
		Version:      "1.0.0",
		Uptime:       time.Since(h.StartTime).Round(time.Second).String(),
		Dependencies: deps,
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, response)
}

func check(ctx context.Context, p Pinger) string {
	if err := p.Ping(ctx); err != nil {
		return fmt.Sprintf("unhealthy: %v", err)
	}
	return "healthy"
}
