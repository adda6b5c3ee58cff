package app

import (
	"strings"

	"brainchild-quiz-service/internal/domain"
)

// gradeAnswer grades chosenLetter for the question at index and advances the
// session in place. Only the question at the cursor may be answered; an
// unknown letter is graded wrong rather than rejected.
func gradeAnswer(session *domain.PlaySession, index int, chosenLetter string) (domain.Grade, error) {
	if index < 0 || index >= len(session.Questions) || index != session.Cursor {
		return domain.Grade{}, domain.ErrStaleQuestionIndex
	}

	question := session.Questions[index]
	chosen := strings.TrimSpace(chosenLetter)
	correct := false
	for _, alt := range question.Alternatives {
		if strings.EqualFold(alt.Letter, chosen) {
			correct = alt.IsCorrect
			break
		}
	}

	session.Answers = append(session.Answers, domain.RecordedAnswer{
		QuestionID:   question.QuestionID,
		ChosenLetter: chosenLetter,
		IsCorrect:    correct,
	})
	if correct {
		session.Score++
	}
	session.Cursor++

	return domain.Grade{
		QuestionIndex:  index,
		IsCorrect:      correct,
		CorrectLetter:  question.CorrectLetter(),
		IsLastQuestion: session.Cursor == len(session.Questions),
		Score:          session.Score,
	}, nil
}
