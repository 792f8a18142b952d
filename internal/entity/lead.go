package entity

import (
	"sort"
	"strings"
	"unicode"
)

// SearchType indica por qual campo o webhook deve procurar o lead.
type SearchType string

const (
	SearchByName  SearchType = "nome"
	SearchByEmail SearchType = "email"
	SearchByPhone SearchType = "telefone"
)

// IsValid informa se o tipo é um dos três aceitos pelo webhook.
func (t SearchType) IsValid() bool {
	switch t {
	case SearchByName, SearchByEmail, SearchByPhone:
		return true
	}
	return false
}

// Pontuação da barra de progresso da jornada.
const (
	progressPerStep = 20
	progressPerLive = 10
	maxProgress     = 100
)

// FeaturedSurveyKeys são as respostas exibidas com destaque no card, nessa ordem.
var FeaturedSurveyKeys = []string{"cargo", "renda", "objetivo", "pq_decidiu"}

// LivePresence tem sempre os quatro slots das lives da campanha.
type LivePresence struct {
	Live1 bool `json:"live1"`
	Live2 bool `json:"live2"`
	Live3 bool `json:"live3"`
	Live4 bool `json:"live4"`
}

// Slots devolve a presença na ordem live1..live4.
func (p LivePresence) Slots() [4]bool {
	return [4]bool{p.Live1, p.Live2, p.Live3, p.Live4}
}

// Set marca a presença na live n (1 a 4). Valores fora da faixa são ignorados.
func (p *LivePresence) Set(n int, present bool) {
	switch n {
	case 1:
		p.Live1 = present
	case 2:
		p.Live2 = present
	case 3:
		p.Live3 = present
	case 4:
		p.Live4 = present
	}
}

// Count conta em quantas lives o lead esteve presente.
func (p LivePresence) Count() int {
	total := 0
	for _, present := range p.Slots() {
		if present {
			total++
		}
	}
	return total
}

// Lead é o modelo de exibição montado a cada resposta do webhook.
// Não é persistido: vive só no estado da sessão até a próxima busca.
type Lead struct {
	ID             string `json:"id"`
	Nome           string `json:"nome"`
	Email          string `json:"email"`
	Telefone       string `json:"telefone"`
	OrigemCampanha string `json:"origem_campanha"`

	UTMSource  string `json:"utm_source,omitempty"`
	UTMMedium  string `json:"utm_medium,omitempty"`
	UTMTerm    string `json:"utm_term,omitempty"`
	UTMContent string `json:"utm_content,omitempty"`

	CadastroLanding   bool              `json:"cadastro_landing"`
	EntradaWhatsapp   bool              `json:"entrada_whatsapp"`
	RespondeuPesquisa bool              `json:"respondeu_pesquisa"`
	RespostasPesquisa map[string]string `json:"respostas_pesquisa,omitempty"`
	PresencaLives     LivePresence      `json:"presenca_lives"`

	DataCadastro string `json:"data_cadastro,omitempty"`
	// Data é a data de cadastro no formato legado (DD/MM/YYYY), mantida como veio.
	Data string `json:"DATA,omitempty"`
}

// Progress calcula o percentual da jornada: 20 por etapa concluída e 10 por live, até 100.
func (l *Lead) Progress() int {
	progress := 0
	if l.CadastroLanding {
		progress += progressPerStep
	}
	if l.EntradaWhatsapp {
		progress += progressPerStep
	}
	if l.RespondeuPesquisa {
		progress += progressPerStep
	}
	progress += l.PresencaLives.Count() * progressPerLive

	if progress > maxProgress {
		return maxProgress
	}
	return progress
}

// RegistrationDate devolve a data de cadastro a exibir; a legada tem prioridade.
func (l *Lead) RegistrationDate() string {
	if l.Data != "" {
		return l.Data
	}
	return l.DataCadastro
}

// HasUTM informa se existe ao menos um parâmetro UTM.
func (l *Lead) HasUTM() bool {
	return l.UTMSource != "" || l.UTMMedium != "" || l.UTMTerm != "" || l.UTMContent != ""
}

// SurveyAnswer é uma resposta pronta para exibição.
type SurveyAnswer struct {
	Key   string
	Label string
	Value string
}

// FeaturedAnswers devolve as respostas de destaque presentes, na ordem de FeaturedSurveyKeys.
func (l *Lead) FeaturedAnswers() []SurveyAnswer {
	if !l.RespondeuPesquisa {
		return nil
	}

	var answers []SurveyAnswer
	for _, key := range FeaturedSurveyKeys {
		if value := l.RespostasPesquisa[key]; value != "" {
			answers = append(answers, SurveyAnswer{Key: key, Label: AnswerLabel(key), Value: value})
		}
	}
	return answers
}

// OtherAnswers devolve as demais respostas ordenadas pela chave.
func (l *Lead) OtherAnswers() []SurveyAnswer {
	if !l.RespondeuPesquisa {
		return nil
	}

	keys := make([]string, 0, len(l.RespostasPesquisa))
	for key := range l.RespostasPesquisa {
		if isFeatured(key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	answers := make([]SurveyAnswer, 0, len(keys))
	for _, key := range keys {
		answers = append(answers, SurveyAnswer{Key: key, Label: AnswerLabel(key), Value: l.RespostasPesquisa[key]})
	}
	return answers
}

// AnswerLabel transforma a chave da resposta em rótulo: "pq_decidiu" vira "Por que decidiu".
func AnswerLabel(key string) string {
	label := strings.ReplaceAll(key, "_", " ")
	label = strings.Replace(label, "pq", "Por que", 1)
	runes := []rune(label)
	if len(runes) == 0 {
		return label
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func isFeatured(key string) bool {
	for _, featured := range FeaturedSurveyKeys {
		if key == featured {
			return true
		}
	}
	return false
}
