package postgres

import (
	"context"
	"errors"

	"brainchild-quiz-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// QuizLoader loads quizzes and their live questions from Postgres.
type QuizLoader struct {
	pool *pgxpool.Pool
}

func NewQuizLoader(pool *pgxpool.Pool) *QuizLoader {
	return &QuizLoader{pool: pool}
}

func (l *QuizLoader) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz := domain.Quiz{ID: quizID}
	var status string
	err := l.pool.QueryRow(ctx,
		`SELECT title, status, is_public, shuffle_questions, shuffle_answers FROM quizzes WHERE id=$1`,
		quizID,
	).Scan(&quiz.Title, &status, &quiz.Public, &quiz.ShuffleQuestions, &quiz.ShuffleAnswers)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, domain.StorageFailure("load quiz", err)
	}
	quiz.Status = domain.QuizStatus(status)

	rows, err := l.pool.Query(ctx, `
		SELECT id, question_text, correct_answer, option_a, option_b, option_c, image_filename, order_index
		FROM questions
		WHERE quiz_id=$1 AND deleted_at IS NULL
		ORDER BY order_index, id`, quizID)
	if err != nil {
		return domain.Quiz{}, domain.StorageFailure("load questions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q       domain.QuestionDefinition
			options [3]*string
			image   *string
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.CorrectAnswer, &options[0], &options[1], &options[2], &image, &q.AuthoredOrder); err != nil {
			return domain.Quiz{}, domain.StorageFailure("scan question", err)
		}
		q.IncorrectAnswers = incorrectAnswers(options[:])
		if image != nil {
			q.ImageRef = *image
		}
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, domain.StorageFailure("load questions", err)
	}
	return quiz, nil
}

func incorrectAnswers(options []*string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt != nil && *opt != "" {
			out = append(out, *opt)
		}
	}
	return out
}

// optionColumns spreads incorrect answers over the option_a..option_c columns.
func optionColumns(incorrect []string) [3]*string {
	var cols [3]*string
	for i := 0; i < len(incorrect) && i < len(cols); i++ {
		text := incorrect[i]
		cols[i] = &text
	}
	return cols
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
