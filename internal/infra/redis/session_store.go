package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"brainchild-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 8

// SessionStore keeps play sessions in Redis as JSON snapshots, one key per
// (quiz, player). Every write refreshes the key TTL, so idle attempts expire.
// Updates use WATCH/MULTI so two submissions racing on the same cursor cannot
// both commit.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) Get(ctx context.Context, playerID, quizID string) (domain.PlaySession, error) {
	data, err := s.client.Get(ctx, s.key(playerID, quizID)).Bytes()
	if err != nil {
		return domain.PlaySession{}, notFoundOrStorage("get session", err)
	}
	return decodeSession(data)
}

func (s *SessionStore) Put(ctx context.Context, session domain.PlaySession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.PlayerID, session.QuizID), data, s.ttl).Err(); err != nil {
		return domain.StorageFailure("put session", err)
	}
	return nil
}

func (s *SessionStore) Update(ctx context.Context, playerID, quizID string, fn func(*domain.PlaySession) error) (domain.PlaySession, error) {
	key := s.key(playerID, quizID)
	var updated domain.PlaySession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return notFoundOrStorage("get session", err)
		}
		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if err := fn(&session); err != nil {
			return callbackError{err}
		}
		next, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err == nil {
			updated = session
		}
		return err
	}

	if err := s.watch(ctx, "update session", txf, key); err != nil {
		return domain.PlaySession{}, err
	}
	return updated, nil
}

func (s *SessionStore) Take(ctx context.Context, playerID, quizID, sessionID string) (domain.PlaySession, error) {
	key := s.key(playerID, quizID)
	var taken domain.PlaySession

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			return notFoundOrStorage("get session", err)
		}
		session, err := decodeSession(data)
		if err != nil {
			return err
		}
		if session.ID != sessionID {
			return domain.ErrNoActiveSession
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err == nil {
			taken = session
		}
		return err
	}

	if err := s.watch(ctx, "take session", txf, key); err != nil {
		return domain.PlaySession{}, err
	}
	return taken, nil
}

// Restore uses SET NX so an attempt started meanwhile is kept.
func (s *SessionStore) Restore(ctx context.Context, session domain.PlaySession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.SetNX(ctx, s.key(session.PlayerID, session.QuizID), data, s.ttl).Err(); err != nil {
		return domain.StorageFailure("restore session", err)
	}
	return nil
}

// watch runs txf under WATCH on keys, retrying when another writer commits first.
func (s *SessionStore) watch(ctx context.Context, op string, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, keys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Re-read and let txf judge the new state.
			continue
		}
		var cb callbackError
		if errors.As(err, &cb) {
			return cb.err
		}
		if errors.Is(err, domain.ErrNoActiveSession) || errors.Is(err, domain.ErrStorage) {
			return err
		}
		return domain.StorageFailure(op, err)
	}
	return domain.StorageFailure(op, redis.TxFailedErr)
}

func (s *SessionStore) Delete(ctx context.Context, playerID, quizID string) error {
	if err := s.client.Del(ctx, s.key(playerID, quizID)).Err(); err != nil {
		return domain.StorageFailure("delete session", err)
	}
	return nil
}

func (s *SessionStore) key(playerID, quizID string) string {
	return fmt.Sprintf("quiz:%s:player:%s:session", quizID, playerID)
}

func decodeSession(data []byte) (domain.PlaySession, error) {
	var session domain.PlaySession
	if err := json.Unmarshal(data, &session); err != nil {
		return domain.PlaySession{}, domain.StorageFailure("decode session", err)
	}
	return session, nil
}

func notFoundOrStorage(op string, err error) error {
	if errors.Is(err, redis.Nil) {
		return domain.ErrNoActiveSession
	}
	return domain.StorageFailure(op, err)
}

// callbackError marks errors returned by an Update callback so they reach
// the caller unwrapped.
type callbackError struct{ err error }

func (e callbackError) Error() string { return e.err.Error() }

func (e callbackError) Unwrap() error { return e.err }
