package app

import (
	"time"

	"brainchild-quiz-service/internal/domain"
)

// compileResult reduces a fully graded session into its result record.
func compileResult(session domain.PlaySession, now time.Time) (domain.QuizResult, error) {
	if !session.Complete() {
		return domain.QuizResult{}, domain.ErrIncompleteSession
	}

	score := 0
	for _, answer := range session.Answers {
		if answer.IsCorrect {
			score++
		}
	}

	elapsed := int(now.Sub(session.StartedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}

	return domain.QuizResult{
		PlayerID:         session.PlayerID,
		QuizID:           session.QuizID,
		Score:            score,
		TotalQuestions:   len(session.Questions),
		TimeSpentSeconds: elapsed,
		CompletedAt:      now,
	}, nil
}
