package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory keeps sessions in process. Expired entries are dropped on lookup.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{sessions: make(map[string]Session), ttl: ttl, now: time.Now}
}

func (m *Memory) Create(_ context.Context, userID string) (Session, error) {
	s := Session{ID: uuid.NewString(), UserID: userID, ExpiresAt: m.now().Add(m.ttl)}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s, nil
}

func (m *Memory) Lookup(_ context.Context, id string) (string, error) {
	if id == "" {
		return "", unauthenticated(errEmptyID)
	}
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok && m.now().Before(s.ExpiresAt) {
		return s.UserID, nil
	}
	if ok {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
	}
	return "", unauthenticated(fmt.Errorf("session %s not active", id))
}

func (m *Memory) Revoke(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
