package memory

import (
	"context"
	"sync"
	"time"

	"brainchild-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
// Each entry carries its own lock so answers for different players never contend.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.Mutex
	sessions map[sessionKey]*entry
}

type sessionKey struct {
	playerID string
	quizID   string
}

type entry struct {
	mu        sync.Mutex
	session   domain.PlaySession
	expiresAt time.Time
	// dead is set, under mu, once the entry is replaced or deleted.
	dead bool
}

// NewSessionStore returns a store whose entries expire ttl after their last
// write. A zero ttl keeps sessions until they are replaced or deleted.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    time.Now,
		sessions: make(map[sessionKey]*entry),
	}
}

func (s *SessionStore) Get(_ context.Context, playerID, quizID string) (domain.PlaySession, error) {
	e, ok := s.lookup(playerID, quizID)
	if !ok {
		return domain.PlaySession{}, domain.ErrNoActiveSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !s.liveLocked(e) {
		return domain.PlaySession{}, domain.ErrNoActiveSession
	}
	return e.session.Clone(), nil
}

func (s *SessionStore) Put(_ context.Context, session domain.PlaySession) error {
	key := sessionKey{playerID: session.PlayerID, quizID: session.QuizID}
	next := &entry{session: session.Clone(), expiresAt: s.expiry()}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.sessions[key]; ok {
		prev.mu.Lock()
		prev.dead = true
		prev.mu.Unlock()
	}
	s.sessions[key] = next
	return nil
}

func (s *SessionStore) Update(_ context.Context, playerID, quizID string, fn func(*domain.PlaySession) error) (domain.PlaySession, error) {
	e, ok := s.lookup(playerID, quizID)
	if !ok {
		return domain.PlaySession{}, domain.ErrNoActiveSession
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !s.liveLocked(e) {
		return domain.PlaySession{}, domain.ErrNoActiveSession
	}

	draft := e.session.Clone()
	if err := fn(&draft); err != nil {
		return domain.PlaySession{}, err
	}
	e.session = draft
	e.expiresAt = s.expiry()
	return draft.Clone(), nil
}

func (s *SessionStore) Delete(_ context.Context, playerID, quizID string) error {
	key := sessionKey{playerID: playerID, quizID: quizID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[key]; ok {
		e.mu.Lock()
		e.dead = true
		e.mu.Unlock()
		delete(s.sessions, key)
	}
	return nil
}

func (s *SessionStore) Take(_ context.Context, playerID, quizID, sessionID string) (domain.PlaySession, error) {
	key := sessionKey{playerID: playerID, quizID: quizID}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[key]
	if !ok {
		return domain.PlaySession{}, domain.ErrNoActiveSession
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !s.liveLocked(e) || e.session.ID != sessionID {
		return domain.PlaySession{}, domain.ErrNoActiveSession
	}
	e.dead = true
	delete(s.sessions, key)
	return e.session.Clone(), nil
}

func (s *SessionStore) Restore(_ context.Context, session domain.PlaySession) error {
	key := sessionKey{playerID: session.PlayerID, quizID: session.QuizID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.sessions[key]; ok {
		prev.mu.Lock()
		live := s.liveLocked(prev)
		prev.mu.Unlock()
		if live {
			return nil
		}
	}
	s.sessions[key] = &entry{session: session.Clone(), expiresAt: s.expiry()}
	return nil
}

// Len reports how many sessions are held, including expired ones not yet swept.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *SessionStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, e := range s.sessions {
		e.mu.Lock()
		if !s.liveLocked(e) {
			e.dead = true
			delete(s.sessions, key)
			removed++
		}
		e.mu.Unlock()
	}
	return removed
}

func (s *SessionStore) lookup(playerID, quizID string) (*entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[sessionKey{playerID: playerID, quizID: quizID}]
	return e, ok
}

func (s *SessionStore) liveLocked(e *entry) bool {
	if e.dead {
		return false
	}
	return e.expiresAt.IsZero() || e.expiresAt.After(s.clock())
}

func (s *SessionStore) expiry() time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}
	return s.clock().Add(s.ttl)
}
