package memory

import (
	"context"
	"sync"

	"brainchild-quiz-service/internal/domain"
)

// ResultStore keeps compiled results in memory (useful for tests/demos).
type ResultStore struct {
	mu      sync.RWMutex
	nextID  int64
	results []domain.QuizResult
}

func NewResultStore() *ResultStore {
	return &ResultStore{}
}

func (s *ResultStore) SaveResult(_ context.Context, result domain.QuizResult) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	result.ID = s.nextID
	s.results = append(s.results, result)
	return result.ID, nil
}

func (s *ResultStore) Result(_ context.Context, id int64) (domain.QuizResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.results {
		if r.ID == id {
			return r, nil
		}
	}
	return domain.QuizResult{}, domain.ErrResultNotFound
}

// Results returns the saved results of a player, oldest first.
func (s *ResultStore) Results(playerID string) []domain.QuizResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.QuizResult
	for _, r := range s.results {
		if r.PlayerID == playerID {
			out = append(out, r)
		}
	}
	return out
}
