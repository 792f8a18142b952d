package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const maxSearchValueLength = 200

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func ValidateSearchLeadInput(input SearchLeadInput) []ValidationError {
	var errors []ValidationError

	value := strings.TrimSpace(input.SearchValue)
	if value == "" {
		errors = append(errors, ValidationError{"searchValue", "informe o nome, email ou telefone do lead"})
	} else if utf8.RuneCountInString(value) > maxSearchValueLength {
		errors = append(errors, ValidationError{"searchValue", fmt.Sprintf("deve ter no máximo %d caracteres", maxSearchValueLength)})
	}

	if !input.SearchType.IsValid() {
		errors = append(errors, ValidationError{"searchType", "deve ser nome, email ou telefone"})
	}

	return errors
}

func validationMessage(errs []ValidationError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return "Busca inválida: " + strings.Join(parts, "; ")
}
