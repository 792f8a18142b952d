package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/tetraeducacao/leadtracker/internal/entity"
	"github.com/tetraeducacao/leadtracker/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

// State é o que a tela mostra abaixo da caixa de busca.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateError   State = "error"
	StateResults State = "results"
	StateEmpty   State = "empty"
)

// Resolve escolhe o estado da tela. A ordem importa: o primeiro que casar vence.
func Resolve(lead *entity.Lead, searchPerformed, loading bool, errMsg string) State {
	switch {
	case loading:
		return StateLoading
	case errMsg != "":
		return StateError
	case lead != nil:
		return StateResults
	case searchPerformed:
		return StateEmpty
	}
	return StateIdle
}

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FormatDate mostra a data de cadastro como DD/MM/YYYY.
// Vazio vira "N/A", DD/MM/YYYY passa direto e o que não for reconhecido sai como veio.
func FormatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "N/A"
	}
	if strings.Contains(value, "/") {
		return value
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return value
}

// SearchOption é uma opção do seletor de tipo de busca.
type SearchOption struct {
	Value    entity.SearchType
	Label    string
	Selected bool
}

// Page é tudo o que o template precisa para desenhar a tela.
type Page struct {
	State       State
	Lead        *entity.Lead
	Error       string
	SearchValue string
	Options     []SearchOption
}

func NewPage(state usecase.SessionState) Page {
	selected := state.SearchType
	if !selected.IsValid() {
		selected = entity.SearchByName
	}

	return Page{
		State:       Resolve(state.Lead, state.SearchPerformed, state.Loading, state.Error),
		Lead:        state.Lead,
		Error:       state.Error,
		SearchValue: state.SearchValue,
		Options: []SearchOption{
			{Value: entity.SearchByName, Label: "Nome", Selected: selected == entity.SearchByName},
			{Value: entity.SearchByEmail, Label: "Email", Selected: selected == entity.SearchByEmail},
			{Value: entity.SearchByPhone, Label: "Telefone", Selected: selected == entity.SearchByPhone},
		},
	}
}

type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("index.html").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("falha ao carregar templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, page Page) error {
	return r.tmpl.ExecuteTemplate(w, "index.html", page)
}

var funcs = template.FuncMap{
	"formatDate": FormatDate,
	"yesNo": func(v bool, yes, no string) string {
		if v {
			return yes
		}
		return no
	},
	"inc": func(i int) int { return i + 1 },
}
