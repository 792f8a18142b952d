package jornada

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tetraeducacao/leadtracker/internal/entity"
)

// DefaultWebhookURL é o fluxo do n8n que consulta a jornada do lead.
const DefaultWebhookURL = "https://tetraeducacao-agente.app.n8n.cloud/webhook/jornada-do-cliente"

// Limite de leitura da resposta do webhook.
const maxResponseBytes = 4 << 20

var ErrInvalidResponse = errors.New("resposta inválida do webhook")

// StatusError indica que o webhook respondeu com status fora de 2xx.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook retornou status %d", e.StatusCode)
}

type Client struct {
	webhookURL string
	httpClient *http.Client
	logger     logrus.FieldLogger
}

func NewClient(webhookURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if webhookURL == "" {
		webhookURL = DefaultWebhookURL
	}
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithField("integration", "jornada"),
	}
}

// URL devolve o endpoint configurado.
func (c *Client) URL() string {
	return c.webhookURL
}

// Lookup faz um POST por busca e devolve o JSON cru decodificado (objeto, array ou nil).
// Números chegam como json.Number para não perder dígitos de telefone.
func (c *Client) Lookup(ctx context.Context, searchValue string, searchType entity.SearchType) (any, error) {
	payload, err := json.Marshal(SearchRequest{SearchValue: searchValue, SearchType: searchType})
	if err != nil {
		return nil, fmt.Errorf("erro ao serializar busca: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("erro ao criar requisição: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	log := c.logger.WithField("search_type", searchType)
	log.Debug("📡 Enviando busca ao webhook")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.WithError(err).Warn("❌ Falha de transporte no webhook")
		return nil, fmt.Errorf("falha ao chamar webhook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("erro ao ler resposta do webhook: %w", err)
	}

	log = log.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Warn("❌ Webhook respondeu com erro")
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	// Fluxo sem itens responde corpo vazio: tratado como lead não encontrado.
	if len(bytes.TrimSpace(body)) == 0 {
		log.Debug("Webhook respondeu corpo vazio")
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var raw any
	if err := decoder.Decode(&raw); err != nil {
		log.WithError(err).Warn("❌ Webhook respondeu algo que não é JSON")
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	log.Debug("📋 Resposta do webhook recebida")
	return raw, nil
}
