package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"brainchild-quiz-service/internal/domain"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Open returns a bun handle over pgdriver for the given DSN.
func Open(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID               string    `bun:"id,pk"`
	Title            string    `bun:"title,notnull"`
	Status           string    `bun:"status,notnull"`
	IsPublic         bool      `bun:"is_public,notnull"`
	ShuffleQuestions bool      `bun:"shuffle_questions,notnull"`
	ShuffleAnswers   bool      `bun:"shuffle_answers,notnull"`
	UpdatedAt        time.Time `bun:"updated_at,notnull"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID            string  `bun:"id,pk"`
	QuizID        string  `bun:"quiz_id,notnull"`
	QuestionText  string  `bun:"question_text,notnull"`
	CorrectAnswer string  `bun:"correct_answer,notnull"`
	OptionA       *string `bun:"option_a"`
	OptionB       *string `bun:"option_b"`
	OptionC       *string `bun:"option_c"`
	ImageFilename *string `bun:"image_filename"`
	OrderIndex    int     `bun:"order_index,notnull"`
}

type resultRow struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID             int64     `bun:"id,pk,autoincrement"`
	PlayerID       string    `bun:"player_id,notnull"`
	QuizID         string    `bun:"quiz_id,notnull"`
	Score          int       `bun:"score,notnull"`
	TotalQuestions int       `bun:"total_questions,notnull"`
	TimeSpent      int       `bun:"time_spent,notnull"`
	CompletedAt    time.Time `bun:"completed_at,notnull"`
}

// Store writes quiz results and seeds quiz content through bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) SaveResult(ctx context.Context, result domain.QuizResult) (int64, error) {
	row := &resultRow{
		PlayerID:       result.PlayerID,
		QuizID:         result.QuizID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		TimeSpent:      result.TimeSpentSeconds,
		CompletedAt:    result.CompletedAt.UTC(),
	}
	if _, err := s.db.NewInsert().Model(row).Returning("id").Exec(ctx); err != nil {
		return 0, domain.StorageFailure("save result", err)
	}
	return row.ID, nil
}

func (s *Store) Result(ctx context.Context, id int64) (domain.QuizResult, error) {
	row := &resultRow{}
	err := s.db.NewSelect().Model(row).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, domain.StorageFailure("load result", err)
	}
	return domain.QuizResult{
		ID:               row.ID,
		PlayerID:         row.PlayerID,
		QuizID:           row.QuizID,
		Score:            row.Score,
		TotalQuestions:   row.TotalQuestions,
		TimeSpentSeconds: row.TimeSpent,
		CompletedAt:      row.CompletedAt,
	}, nil
}

// UpsertQuiz replaces a quiz and its questions in one transaction. Questions
// no longer present are soft-deleted so historical results keep their references.
func (s *Store) UpsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := &quizRow{
			ID:               quiz.ID,
			Title:            quiz.Title,
			Status:           string(quiz.Status),
			IsPublic:         quiz.Public,
			ShuffleQuestions: quiz.ShuffleQuestions,
			ShuffleAnswers:   quiz.ShuffleAnswers,
			UpdatedAt:        time.Now().UTC(),
		}
		if _, err := tx.NewInsert().Model(q).
			On("CONFLICT (id) DO UPDATE").
			Set("title = EXCLUDED.title").
			Set("status = EXCLUDED.status").
			Set("is_public = EXCLUDED.is_public").
			Set("shuffle_questions = EXCLUDED.shuffle_questions").
			Set("shuffle_answers = EXCLUDED.shuffle_answers").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return err
		}

		if _, err := tx.NewUpdate().Table("questions").
			Set("deleted_at = now()").
			Where("quiz_id = ?", quiz.ID).
			Where("deleted_at IS NULL").
			Exec(ctx); err != nil {
			return err
		}

		for _, def := range quiz.Questions {
			opts := optionColumns(def.IncorrectAnswers)
			row := &questionRow{
				ID:            def.ID,
				QuizID:        quiz.ID,
				QuestionText:  def.Text,
				CorrectAnswer: def.CorrectAnswer,
				OptionA:       opts[0],
				OptionB:       opts[1],
				OptionC:       opts[2],
				ImageFilename: nullable(def.ImageRef),
				OrderIndex:    def.AuthoredOrder,
			}
			if _, err := tx.NewInsert().Model(row).
				On("CONFLICT (id) DO UPDATE").
				Set("quiz_id = EXCLUDED.quiz_id").
				Set("question_text = EXCLUDED.question_text").
				Set("correct_answer = EXCLUDED.correct_answer").
				Set("option_a = EXCLUDED.option_a").
				Set("option_b = EXCLUDED.option_b").
				Set("option_c = EXCLUDED.option_c").
				Set("image_filename = EXCLUDED.image_filename").
				Set("order_index = EXCLUDED.order_index").
				Set("deleted_at = NULL").
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.StorageFailure("upsert quiz", err)
	}
	return nil
}
