package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuiz is returned when a quiz has no playable questions.
	ErrEmptyQuiz = errors.New("quiz has no playable questions")
	// ErrNoActiveSession is returned when no play session exists for a player and quiz.
	ErrNoActiveSession = errors.New("no active play session")
	// ErrStaleQuestionIndex is returned for out-of-sequence or out-of-range submissions.
	ErrStaleQuestionIndex = errors.New("question index does not match session progress")
	// ErrIncompleteSession is returned when finishing before every question is graded.
	ErrIncompleteSession = errors.New("play session has unanswered questions")
	// ErrSessionComplete indicates there is no current question left to show.
	ErrSessionComplete = errors.New("all questions answered")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuizNotPlayable indicates the quiz exists but is not open for play.
	ErrQuizNotPlayable = errors.New("quiz is not available for play")
	// ErrResultNotFound indicates no saved result has the requested id.
	ErrResultNotFound = errors.New("result not found")
	// ErrNotResultOwner is returned when a player asks for someone else's result.
	ErrNotResultOwner = errors.New("result belongs to another player")
	// ErrStorage marks failures of a persistence or session backend.
	ErrStorage = errors.New("storage failure")
)

// StorageFailure wraps a backend error so callers can match it with errors.Is(err, ErrStorage).
func StorageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrStorage, op, err)
}
