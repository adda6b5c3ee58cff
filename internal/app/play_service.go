package app

import (
	"context"
	"log"
	"time"

	"brainchild-quiz-service/internal/domain"
)

// SessionStore holds at most one play session per (player, quiz) pair.
// Implementations return domain.ErrNoActiveSession for missing entries and
// wrap backend failures with domain.StorageFailure.
type SessionStore interface {
	Get(ctx context.Context, playerID, quizID string) (domain.PlaySession, error)
	// Put stores session under its own player and quiz, replacing any previous attempt.
	Put(ctx context.Context, session domain.PlaySession) error
	// Update applies fn to a private copy and stores it only if fn succeeds.
	// Concurrent updates for the same pair are serialized.
	Update(ctx context.Context, playerID, quizID string, fn func(*domain.PlaySession) error) (domain.PlaySession, error)
	Delete(ctx context.Context, playerID, quizID string) error
	// Take removes and returns the pair's session only if it is the attempt
	// sessionID; otherwise it returns domain.ErrNoActiveSession.
	Take(ctx context.Context, playerID, quizID, sessionID string) (domain.PlaySession, error)
	// Restore puts a taken session back unless the pair already has a newer attempt.
	Restore(ctx context.Context, session domain.PlaySession) error
}

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// ResultRepository persists compiled results.
type ResultRepository interface {
	SaveResult(ctx context.Context, result domain.QuizResult) (int64, error)
	// Result returns domain.ErrResultNotFound for unknown ids.
	Result(ctx context.Context, id int64) (domain.QuizResult, error)
}

// PlayService contains the quiz play use cases.
type PlayService struct {
	bank     *QuestionBank
	builder  *SessionBuilder
	sessions SessionStore
	results  ResultRepository
	now      func() time.Time
}

func NewPlayService(quizzes QuizRepository, sessions SessionStore, results ResultRepository) *PlayService {
	return NewPlayServiceWith(quizzes, sessions, results, NewSessionBuilder(), time.Now)
}

// NewPlayServiceWith allows a custom builder and clock, mainly for tests.
func NewPlayServiceWith(quizzes QuizRepository, sessions SessionStore, results ResultRepository, builder *SessionBuilder, now func() time.Time) *PlayService {
	return &PlayService{
		bank:     NewQuestionBank(quizzes),
		builder:  builder,
		sessions: sessions,
		results:  results,
		now:      now,
	}
}

// Start builds a new attempt for the player and discards any unfinished one.
func (s *PlayService) Start(ctx context.Context, playerID, quizID string) (domain.PlaySession, error) {
	plan, err := s.bank.Plan(ctx, quizID)
	if err != nil {
		return domain.PlaySession{}, err
	}
	session, err := s.builder.Build(plan, playerID)
	if err != nil {
		return domain.PlaySession{}, err
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return domain.PlaySession{}, err
	}
	return session, nil
}

// Current returns the question waiting for an answer.
func (s *PlayService) Current(ctx context.Context, playerID, quizID string) (domain.QuestionView, error) {
	session, err := s.sessions.Get(ctx, playerID, quizID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if session.Complete() {
		return domain.QuestionView{}, domain.ErrSessionComplete
	}
	return session.ViewAt(session.Cursor), nil
}

// Submit grades the answer for questionIndex, which must be the session cursor.
func (s *PlayService) Submit(ctx context.Context, playerID, quizID string, questionIndex int, chosenLetter string) (domain.Grade, error) {
	var grade domain.Grade
	_, err := s.sessions.Update(ctx, playerID, quizID, func(session *domain.PlaySession) error {
		var err error
		grade, err = gradeAnswer(session, questionIndex, chosenLetter)
		return err
	})
	if err != nil {
		return domain.Grade{}, err
	}
	return grade, nil
}

// Finish compiles and saves the result of a fully answered session. The
// session is taken out of the store before the save, so concurrent finishes
// for one attempt save a single result; a failed save puts it back.
func (s *PlayService) Finish(ctx context.Context, playerID, quizID string) (domain.QuizResult, error) {
	session, err := s.sessions.Get(ctx, playerID, quizID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if !session.Complete() {
		return domain.QuizResult{}, domain.ErrIncompleteSession
	}

	session, err = s.sessions.Take(ctx, playerID, quizID, session.ID)
	if err != nil {
		return domain.QuizResult{}, err
	}
	result, err := compileResult(session, s.now())
	if err != nil {
		return domain.QuizResult{}, err
	}

	id, err := s.results.SaveResult(ctx, result)
	if err != nil {
		if rerr := s.sessions.Restore(ctx, session); rerr != nil {
			log.Printf("finish %s/%s: session lost after failed save: %v", quizID, playerID, rerr)
		}
		return domain.QuizResult{}, err
	}
	result.ID = id
	return result, nil
}

// Result returns a saved result owned by playerID.
func (s *PlayService) Result(ctx context.Context, playerID string, id int64) (domain.QuizResult, error) {
	result, err := s.results.Result(ctx, id)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if result.PlayerID != playerID {
		return domain.QuizResult{}, domain.ErrNotResultOwner
	}
	return result, nil
}

// Abandon drops the player's attempt, if any.
func (s *PlayService) Abandon(ctx context.Context, playerID, quizID string) error {
	return s.sessions.Delete(ctx, playerID, quizID)
}
