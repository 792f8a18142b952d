package jornada

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/tetraeducacao/leadtracker/internal/entity"
)

var ErrLeadNotFound = errors.New("lead não encontrado")

// EnvelopeError vem do formato antigo {success:false, error|message:"..."}.
type EnvelopeError struct {
	Message string
}

func (e *EnvelopeError) Error() string {
	return e.Message
}

const defaultEnvelopeMessage = "Erro ao buscar lead"

// Namespace do UUIDv5 usado quando o lead não tem id nem email.
var leadNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("leadtracker/lead"))

// fieldRule resolve um campo texto do Lead: o primeiro caminho presente e não vazio vence.
// Caminhos com ponto descem em objetos aninhados ("lead.nome").
type fieldRule struct {
	field string
	paths []string
	set   func(l *entity.Lead, v string)
}

var fieldRules = []fieldRule{
	{"nome", []string{"lead.nome", "nome", "NOME"}, func(l *entity.Lead, v string) { l.Nome = v }},
	{"email", []string{"lead.email", "email", "EMAIL"}, func(l *entity.Lead, v string) { l.Email = v }},
	{"telefone", []string{"lead.telefone", "telefone", "TELEFONE"}, func(l *entity.Lead, v string) { l.Telefone = v }},
	{"origem_campanha", []string{"lead.origem_campanha", "origem_campanha", "ORIGEM_CAMPANHA", "CAMPANHA"}, func(l *entity.Lead, v string) { l.OrigemCampanha = v }},
	{"utm_source", []string{"lead.utm_source", "utm_source", "UTM_SOURCE"}, func(l *entity.Lead, v string) { l.UTMSource = v }},
	{"utm_medium", []string{"lead.utm_medium", "utm_medium", "UTM_MEDIUM"}, func(l *entity.Lead, v string) { l.UTMMedium = v }},
	{"utm_term", []string{"lead.utm_term", "utm_term", "UTM_TERM"}, func(l *entity.Lead, v string) { l.UTMTerm = v }},
	{"utm_content", []string{"lead.utm_content", "utm_content", "UTM_CONTENT"}, func(l *entity.Lead, v string) { l.UTMContent = v }},
	{"data_cadastro", []string{"cadastro.data", "data_cadastro"}, func(l *entity.Lead, v string) { l.DataCadastro = v }},
	{"DATA", []string{"DATA"}, func(l *entity.Lead, v string) { l.Data = v }},
	{"id", []string{"lead.id", "id", "ID"}, func(l *entity.Lead, v string) { l.ID = v }},
}

// flagRule marca uma etapa da jornada pela presença de qualquer um dos caminhos.
type flagRule struct {
	field string
	paths []string
	set   func(l *entity.Lead)
}

var flagRules = []flagRule{
	{"cadastro_landing", []string{"cadastro.data", "cadastro", "data_cadastro", "DATA"}, func(l *entity.Lead) { l.CadastroLanding = true }},
	{"entrada_whatsapp", []string{"whatsapp.data", "whatsapp", "data_entrada_whatsapp", "DATA_WHATSAPP"}, func(l *entity.Lead) { l.EntradaWhatsapp = true }},
}

// livePaths devolve os caminhos da live n; só conta objeto com ao menos uma chave.
func livePaths(n int) []string {
	return []string{fmt.Sprintf("lives.aula%d", n), fmt.Sprintf("lives.live%d", n)}
}

// Normalize converte o payload cru do webhook no Lead exibido no card.
// Array usa só o primeiro elemento. Payload vazio devolve ErrLeadNotFound.
func Normalize(raw any) (*entity.Lead, error) {
	record, err := unwrap(raw, true)
	if err != nil {
		return nil, err
	}
	if len(record) == 0 {
		return nil, ErrLeadNotFound
	}

	lead := &entity.Lead{}

	for _, rule := range fieldRules {
		if value, ok := firstString(record, rule.paths); ok {
			rule.set(lead, value)
		}
	}

	for _, rule := range flagRules {
		if anyPresent(record, rule.paths) {
			rule.set(lead)
		}
	}

	for n := 1; n <= 4; n++ {
		lead.PresencaLives.Set(n, attended(record, livePaths(n)))
	}

	if answers := surveyAnswers(record); len(answers) > 0 {
		lead.RespondeuPesquisa = true
		lead.RespostasPesquisa = answers
	}

	if lead.ID == "" {
		lead.ID = fallbackID(lead)
	}

	return lead, nil
}

func unwrap(raw any, allowEnvelope bool) (map[string]any, error) {
	switch v := raw.(type) {
	case []any:
		if len(v) == 0 {
			return nil, ErrLeadNotFound
		}
		record, ok := v[0].(map[string]any)
		if !ok {
			return nil, ErrLeadNotFound
		}
		return record, nil

	case map[string]any:
		if allowEnvelope && isEnvelope(v) {
			if success, _ := v["success"].(bool); !success {
				return nil, &EnvelopeError{Message: envelopeMessage(v)}
			}
			return unwrap(v["data"], false)
		}
		return v, nil
	}

	return nil, ErrLeadNotFound
}

// isEnvelope: "success" booleano é envelope, a não ser que o próprio objeto já traga campos do lead.
func isEnvelope(record map[string]any) bool {
	if _, ok := record["success"].(bool); !ok {
		return false
	}
	for _, key := range []string{"data", "error", "message"} {
		if _, ok := record[key]; ok {
			return true
		}
	}
	return !hasLeadFields(record)
}

func hasLeadFields(record map[string]any) bool {
	for _, rule := range fieldRules {
		if _, ok := firstString(record, rule.paths); ok {
			return true
		}
	}
	return false
}

func envelopeMessage(envelope map[string]any) string {
	for _, key := range []string{"error", "message"} {
		if message, ok := envelope[key].(string); ok && strings.TrimSpace(message) != "" {
			return message
		}
	}
	return defaultEnvelopeMessage
}

func lookup(record map[string]any, path string) (any, bool) {
	var current any = record
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func firstString(record map[string]any, paths []string) (string, bool) {
	for _, path := range paths {
		value, ok := lookup(record, path)
		if !ok {
			continue
		}
		if text, ok := stringify(value); ok {
			return text, true
		}
	}
	return "", false
}

func anyPresent(record map[string]any, paths []string) bool {
	for _, path := range paths {
		if value, ok := lookup(record, path); ok && present(value) {
			return true
		}
	}
	return false
}

func attended(record map[string]any, paths []string) bool {
	for _, path := range paths {
		value, _ := lookup(record, path)
		if obj, ok := value.(map[string]any); ok && len(obj) > 0 {
			return true
		}
	}
	return false
}

func surveyAnswers(record map[string]any) map[string]string {
	answers := make(map[string]string)

	if survey, ok := record["pesquisa"].(map[string]any); ok && len(survey) > 0 {
		for key, value := range survey {
			if text, ok := stringify(value); ok {
				answers[key] = text
			}
		}
		return answers
	}

	// Formato antigo: perguntas por extenso no topo. Ordena para que a primeira
	// variante de uma mesma pergunta vença sempre.
	keys := make([]string, 0, len(record))
	for key := range record {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, question := range keys {
		key, ok := matchLegacyQuestion(question)
		if !ok {
			continue
		}
		if _, taken := answers[key]; taken {
			continue
		}
		if text, ok := stringify(record[question]); ok {
			answers[key] = text
		}
	}
	return answers
}

// present segue a regra de "truthy" do payload: nulo, "", false e coleções vazias não contam.
func present(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case map[string]any:
		return len(v) > 0
	case []any:
		return len(v) > 0
	}
	return true
}

func stringify(value any) (string, bool) {
	if !present(value) {
		return "", false
	}

	switch v := value.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return "", false
	}
	return string(encoded), true
}

func fallbackID(lead *entity.Lead) string {
	if lead.Email != "" {
		return lead.Email
	}
	return uuid.NewSHA1(leadNamespace, []byte(lead.Nome+"|"+lead.Telefone)).String()
}
