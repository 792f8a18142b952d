package jornada

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// legacyQuestions liga o texto das perguntas do formulário antigo (chaves soltas no
// topo do payload) à chave semântica usada no card. A comparação é por prefixo,
// ignorando acentos, caixa e espaços repetidos.
var legacyQuestions = []struct {
	question string
	key      string
}{
	{"Qual é o seu cargo", "cargo"},
	{"Qual é a sua renda", "renda"},
	{"Qual é o seu principal objetivo", "objetivo"},
	{"Por que você decidiu", "pq_decidiu"},
	{"Qual é a sua idade", "idade"},
	{"Você já investe", "ja_investe"},
	{"Como você conheceu", "como_conheceu"},
}

var normalizedQuestions = func() []string {
	out := make([]string, len(legacyQuestions))
	for i, q := range legacyQuestions {
		out[i] = normalizeQuestion(q.question)
	}
	return out
}()

// matchLegacyQuestion devolve a chave semântica de uma pergunta conhecida.
func matchLegacyQuestion(text string) (string, bool) {
	normalized := normalizeQuestion(text)
	if normalized == "" {
		return "", false
	}

	for i, prefix := range normalizedQuestions {
		if strings.HasPrefix(normalized, prefix) {
			return legacyQuestions[i].key, true
		}
	}
	return "", false
}

func normalizeQuestion(text string) string {
	decomposed := norm.NFD.String(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
