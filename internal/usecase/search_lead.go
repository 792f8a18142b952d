package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tetraeducacao/leadtracker/internal/entity"
	"github.com/tetraeducacao/leadtracker/internal/infra/integration/jornada"
)

// Resultados possíveis de uma busca, usados em métricas e logs.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeError    = "error"
)

type SearchLeadUseCase struct {
	Lookup   LeadLookup
	Cache    LeadCache
	Recorder SearchLogRecorder
	Metrics  SearchMetrics
	Logger   logrus.FieldLogger
}

// NewSearchLeadUseCase monta a busca. Cache, Recorder e Metrics podem ser nil.
func NewSearchLeadUseCase(
	lookup LeadLookup,
	cache LeadCache,
	recorder SearchLogRecorder,
	metrics SearchMetrics,
	logger logrus.FieldLogger,
) *SearchLeadUseCase {
	return &SearchLeadUseCase{
		Lookup:   lookup,
		Cache:    cache,
		Recorder: recorder,
		Metrics:  metrics,
		Logger:   logger,
	}
}

// Execute faz uma busca: valida, chama o webhook uma vez e normaliza a resposta.
// Lead não encontrado devolve (nil, nil).
func (uc *SearchLeadUseCase) Execute(ctx context.Context, input SearchLeadInput) (*entity.Lead, error) {
	start := time.Now()
	input.SearchValue = strings.TrimSpace(input.SearchValue)

	if errs := ValidateSearchLeadInput(input); len(errs) > 0 {
		uc.observe(input.SearchType, OutcomeInvalid, time.Since(start))
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: validationMessage(errs)}
	}

	log := uc.Logger.WithField("search_type", input.SearchType)
	log.Info("🔍 Iniciando busca de lead")

	key := cacheKey(input)
	if lead := uc.cached(ctx, key); lead != nil {
		log.WithField("lead_id", lead.ID).Debug("Lead servido do cache")
		uc.finish(ctx, input, lead, nil, time.Since(start))
		return lead, nil
	}

	raw, err := uc.Lookup.Lookup(ctx, input.SearchValue, input.SearchType)
	if err != nil {
		techErr := toTechnicalError(err)
		log.WithError(err).WithField("code", techErr.Code).Error("❌ Falha ao consultar webhook")
		uc.finish(ctx, input, nil, techErr, time.Since(start))
		return nil, techErr
	}

	lead, err := jornada.Normalize(raw)
	if errors.Is(err, jornada.ErrLeadNotFound) {
		log.Info("Lead não encontrado")
		uc.finish(ctx, input, nil, nil, time.Since(start))
		return nil, nil
	}
	if err != nil {
		techErr := toTechnicalError(err)
		log.WithError(err).Warn("❌ Webhook recusou a busca")
		uc.finish(ctx, input, nil, techErr, time.Since(start))
		return nil, techErr
	}

	uc.store(ctx, key, lead)

	log.WithFields(logrus.Fields{
		"lead_id":  lead.ID,
		"progress": lead.Progress(),
	}).Info("✅ Lead encontrado")
	uc.finish(ctx, input, lead, nil, time.Since(start))

	return lead, nil
}

func (uc *SearchLeadUseCase) finish(ctx context.Context, input SearchLeadInput, lead *entity.Lead, searchErr error, elapsed time.Duration) {
	outcome := OutcomeFound
	switch {
	case searchErr != nil:
		outcome = OutcomeError
	case lead == nil:
		outcome = OutcomeNotFound
	}
	uc.observe(input.SearchType, outcome, elapsed)

	if uc.Recorder == nil {
		return
	}
	// Histórico é melhor esforço: falha aqui não muda o resultado da busca.
	entry := entity.NewSearchLog(input.SearchType, input.SearchValue, lead, searchErr, elapsed)
	if err := uc.Recorder.Record(context.WithoutCancel(ctx), entry); err != nil {
		uc.Logger.WithError(err).WithField("search_log_id", entry.ID).Warn("⚠️ Falha ao registrar histórico da busca")
	}
}

func (uc *SearchLeadUseCase) observe(searchType entity.SearchType, outcome string, elapsed time.Duration) {
	if uc.Metrics != nil {
		uc.Metrics.ObserveSearch(searchType, outcome, elapsed)
	}
}

func (uc *SearchLeadUseCase) cached(ctx context.Context, key string) *entity.Lead {
	if uc.Cache == nil {
		return nil
	}

	value, err := uc.Cache.Get(ctx, key)
	if err != nil || value == "" {
		return nil
	}

	var lead entity.Lead
	if err := json.Unmarshal([]byte(value), &lead); err != nil {
		uc.Logger.WithError(err).WithField("key", key).Warn("Entrada inválida no cache")
		return nil
	}
	return &lead
}

func (uc *SearchLeadUseCase) store(ctx context.Context, key string, lead *entity.Lead) {
	if uc.Cache == nil {
		return
	}

	encoded, err := json.Marshal(lead)
	if err != nil {
		return
	}
	if err := uc.Cache.Set(ctx, key, string(encoded)); err != nil {
		uc.Logger.WithError(err).WithField("key", key).Warn("Falha ao gravar lead no cache")
	}
}

func cacheKey(input SearchLeadInput) string {
	return fmt.Sprintf("lead:%s:%s", input.SearchType, strings.ToLower(input.SearchValue))
}

// toTechnicalError traduz a falha do webhook para a mensagem mostrada ao time.
func toTechnicalError(err error) *TechnicalError {
	var statusErr *jornada.StatusError
	var envelopeErr *jornada.EnvelopeError

	switch {
	case errors.Is(err, context.Canceled):
		return &TechnicalError{Code: "CANCELED", Message: "Busca cancelada.", Err: err}
	case errors.As(err, &envelopeErr):
		return &TechnicalError{Code: "WEBHOOK_ERROR", Message: envelopeErr.Message, Err: err}
	case errors.As(err, &statusErr):
		return &TechnicalError{
			Code:    "WEBHOOK_ERROR",
			Message: fmt.Sprintf("O serviço de busca respondeu com erro (status %d).", statusErr.StatusCode),
			Err:     err,
		}
	case errors.Is(err, jornada.ErrInvalidResponse):
		return &TechnicalError{Code: "INVALID_RESPONSE", Message: "O serviço de busca retornou uma resposta inválida.", Err: err}
	}

	return &TechnicalError{
		Code:    "WEBHOOK_UNAVAILABLE",
		Message: "Não foi possível conectar ao serviço de busca. Tente novamente.",
		Err:     err,
	}
}
