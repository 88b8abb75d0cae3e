package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. Sessions are copied on the
// way in and out, so callers never share mutable state.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	maxSessions int
	ttl         time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

// NewMemoryStore creates a MemoryStore holding at most maxSessions sessions.
// Sessions not updated within ttl are evicted the next time a session is
// created. Zero disables either limit.
func NewMemoryStore(maxSessions int, ttl time.Duration, logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[uuid.UUID]*Session),
		maxSessions: maxSessions,
		ttl:         ttl,
		now:         time.Now,
		logger:      logger,
	}
}

func (m *MemoryStore) CreateSession(_ context.Context, s *Session) error {
	now := m.now()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = now
	s.UpdatedAt = now

	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictExpired(now)
	for m.maxSessions > 0 && len(m.sessions) >= m.maxSessions {
		m.evictOldest()
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

// ListSessions returns every session, newest first.
func (m *MemoryStore) ListSessions(_ context.Context) ([]*Session, error) {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Clone())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) MutateSession(_ context.Context, id uuid.UUID, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := existing.Clone()
	if err := fn(s); err != nil {
		return nil, err
	}
	s.ID = existing.ID
	s.CreatedAt = existing.CreatedAt
	s.UpdatedAt = m.now()
	m.sessions[id] = s.Clone()
	return s, nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()
	return nil
}

// evictExpired must be called with mu held.
func (m *MemoryStore) evictExpired(now time.Time) {
	if m.ttl <= 0 {
		return
	}
	for id, s := range m.sessions {
		if now.Sub(s.UpdatedAt) > m.ttl {
			delete(m.sessions, id)
			m.logger.Info("session expired", "session_id", id, "source", s.Source)
		}
	}
}

// evictOldest drops the least recently updated session. Must be called with
// mu held.
func (m *MemoryStore) evictOldest() {
	var oldest *Session
	for _, s := range m.sessions {
		if oldest == nil || s.UpdatedAt.Before(oldest.UpdatedAt) {
			oldest = s
		}
	}
	if oldest == nil {
		return
	}
	delete(m.sessions, oldest.ID)
	m.logger.Info("session evicted", "session_id", oldest.ID, "source", oldest.Source)
}
