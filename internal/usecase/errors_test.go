package usecase

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")

	assert.Empty(t, ErrorMessage(nil))
	assert.Equal(t, "Busca inválida", ErrorMessage(&DomainError{Code: "VALIDATION_ERROR", Message: "Busca inválida"}))
	assert.Equal(t, "Webhook fora do ar", ErrorMessage(&TechnicalError{Message: "Webhook fora do ar", Err: cause}))
	assert.Equal(t, "Webhook fora do ar", ErrorMessage(fmt.Errorf("wrap: %w", &TechnicalError{Message: "Webhook fora do ar"})))
	assert.Equal(t, "Erro desconhecido", ErrorMessage(cause))
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("timeout")
	techErr := &TechnicalError{Code: "WEBHOOK_UNAVAILABLE", Message: "x", Err: cause}

	assert.True(t, IsTechnicalError(techErr))
	assert.False(t, IsDomainError(techErr))
	assert.True(t, errors.Is(techErr, cause))
	assert.True(t, IsDomainError(&DomainError{}))
	assert.False(t, IsTechnicalError(cause))
}
