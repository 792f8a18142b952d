package usecase

import "errors"

// Mensagem exibida quando o erro não vem de nenhuma camada conhecida.
const unknownErrorMessage = "Erro desconhecido"

// DomainError é erro de entrada do usuário (busca inválida).
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr)
}

// TechnicalError é falha de integração: webhook fora do ar, resposta inválida etc.
// Message é o texto que o time comercial vê; Err guarda a causa para os logs.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var techErr *TechnicalError
	return errors.As(err, &techErr)
}

// ErrorMessage converte qualquer erro da busca na mensagem única mostrada na tela.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}

	var techErr *TechnicalError
	if errors.As(err, &techErr) {
		return techErr.Message
	}

	return unknownErrorMessage
}
