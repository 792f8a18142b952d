package usecase

import (
	"context"
	"sync"

	"github.com/tetraeducacao/leadtracker/internal/entity"
)

// SessionState é o estado transitório de uma tela de busca.
type SessionState struct {
	Lead            *entity.Lead
	SearchPerformed bool
	Loading         bool
	Error           string
	SearchValue     string
	SearchType      entity.SearchType
}

// SearchSession guarda o estado de uma tela (um navegador).
// Cada busca recebe um número de sequência crescente e só a mais recente
// despachada pode alterar o estado: resposta atrasada de uma busca anterior é descartada.
type SearchSession struct {
	searcher LeadSearcher

	mu     sync.Mutex
	latest uint64
	state  SessionState
}

func NewSearchSession(searcher LeadSearcher) *SearchSession {
	return &SearchSession{searcher: searcher}
}

// Search executa a busca e devolve o resultado dela mesma, aplicado ou não ao estado.
func (s *SearchSession) Search(ctx context.Context, searchValue string, searchType entity.SearchType) (*entity.Lead, error) {
	s.mu.Lock()
	s.latest++
	seq := s.latest
	s.state.SearchPerformed = true
	s.state.Loading = true
	s.state.Error = ""
	s.state.SearchValue = searchValue
	s.state.SearchType = searchType
	s.mu.Unlock()

	lead, err := s.searcher.Execute(ctx, SearchLeadInput{SearchValue: searchValue, SearchType: searchType})

	s.mu.Lock()
	defer s.mu.Unlock()

	if seq != s.latest {
		return lead, err
	}

	s.state.Loading = false
	s.state.Lead = lead
	if err != nil {
		s.state.Lead = nil
		s.state.Error = ErrorMessage(err)
	}

	return lead, err
}

// Fail registra uma busca que nem chegou ao webhook (ex.: limite de requisições)
// e invalida qualquer busca anterior ainda em andamento.
func (s *SearchSession) Fail(searchValue string, searchType entity.SearchType, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest++
	s.state = SessionState{
		SearchPerformed: true,
		Error:           message,
		SearchValue:     searchValue,
		SearchType:      searchType,
	}
}

// Reset é o "Nova Busca": limpa a tela e invalida buscas ainda em andamento.
func (s *SearchSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.latest++
	s.state = SessionState{}
}

// Snapshot devolve uma cópia do estado atual.
func (s *SearchSession) Snapshot() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}
