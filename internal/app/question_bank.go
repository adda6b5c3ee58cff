package app

import (
	"context"

	"brainchild-quiz-service/internal/domain"
)

// QuestionBank is the read-only view of quiz content the engine plays from.
type QuestionBank struct {
	quizzes QuizRepository
}

func NewQuestionBank(quizzes QuizRepository) *QuestionBank {
	return &QuestionBank{quizzes: quizzes}
}

// PlayableQuestions returns the questions of a quiz that is open for play.
func (b *QuestionBank) PlayableQuestions(ctx context.Context, quizID string) ([]domain.QuestionDefinition, error) {
	quiz, err := b.playable(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return quiz.Questions, nil
}

// ShuffleSettings returns the shuffle switches of a quiz that is open for play.
func (b *QuestionBank) ShuffleSettings(ctx context.Context, quizID string) (domain.ShuffleSettings, error) {
	quiz, err := b.playable(ctx, quizID)
	if err != nil {
		return domain.ShuffleSettings{}, err
	}
	return quiz.Settings(), nil
}

// Plan loads everything a session build needs in one repository round trip.
func (b *QuestionBank) Plan(ctx context.Context, quizID string) (QuizPlan, error) {
	quiz, err := b.playable(ctx, quizID)
	if err != nil {
		return QuizPlan{}, err
	}
	return QuizPlan{
		QuizID:           quizID,
		Questions:        quiz.Questions,
		ShuffleQuestions: quiz.ShuffleQuestions,
		ShuffleAnswers:   quiz.ShuffleAnswers,
	}, nil
}

func (b *QuestionBank) playable(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := b.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if !quiz.CanBePlayed() {
		return domain.Quiz{}, domain.ErrQuizNotPlayable
	}
	return quiz, nil
}
