package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type sessionEntry struct {
	session  *SearchSession
	lastSeen time.Time
}

// SessionStore mantém uma SearchSession por navegador (cookie) em memória.
type SessionStore struct {
	searcher LeadSearcher
	ttl      time.Duration
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*sessionEntry
}

func NewSessionStore(searcher LeadSearcher, ttl time.Duration) *SessionStore {
	return &SessionStore{
		searcher: searcher,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

// Get devolve a sessão do id, se ainda existir.
func (st *SessionStore) Get(id string) (*SearchSession, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	entry, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = st.now()
	return entry.session, true
}

// GetOrCreate devolve a sessão existente ou cria uma nova com id novo.
func (st *SessionStore) GetOrCreate(id string) (string, *SearchSession) {
	if id != "" {
		if session, ok := st.Get(id); ok {
			return id, session
		}
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	newID := uuid.New().String()
	session := NewSearchSession(st.searcher)
	st.sessions[newID] = &sessionEntry{session: session, lastSeen: st.now()}
	return newID, session
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	return len(st.sessions)
}

// Cleanup remove sessões paradas há mais que o ttl e sem busca em andamento.
func (st *SessionStore) Cleanup() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	removed := 0
	for id, entry := range st.sessions {
		if now.Sub(entry.lastSeen) <= st.ttl {
			continue
		}
		if entry.session.Snapshot().Loading {
			continue
		}
		delete(st.sessions, id)
		removed++
	}
	return removed
}

// StartCleanup roda Cleanup periodicamente até o ctx ser cancelado.
func (st *SessionStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.Cleanup()
		}
	}
}
