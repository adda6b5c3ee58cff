package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"brainchild-quiz-service/internal/domain"
	_ "modernc.org/sqlite" // driver: sqlite
)

const schema = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS quizzes (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'active',
  is_public INTEGER NOT NULL DEFAULT 1,
  shuffle_questions INTEGER NOT NULL DEFAULT 1,
  shuffle_answers INTEGER NOT NULL DEFAULT 1,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
  id TEXT PRIMARY KEY,
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  question_text TEXT NOT NULL,
  correct_answer TEXT NOT NULL,
  option_a TEXT,
  option_b TEXT,
  option_c TEXT,
  image_filename TEXT,
  order_index INTEGER NOT NULL DEFAULT 0,
  deleted_at INTEGER
);

CREATE TABLE IF NOT EXISTS quiz_results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  player_id TEXT NOT NULL,
  quiz_id TEXT NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
  score INTEGER NOT NULL,
  total_questions INTEGER NOT NULL,
  time_spent INTEGER NOT NULL,
  completed_at INTEGER NOT NULL
);
`

// Store is a single-file persistence backend for local runs: it loads quizzes
// and records results with the same layout as the Postgres schema.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// Single writer; keep the pool tiny to avoid busy errors.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz := domain.Quiz{ID: quizID}
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT title, status, is_public, shuffle_questions, shuffle_answers FROM quizzes WHERE id = ?`,
		quizID,
	).Scan(&quiz.Title, &status, &quiz.Public, &quiz.ShuffleQuestions, &quiz.ShuffleAnswers)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, domain.StorageFailure("load quiz", err)
	}
	quiz.Status = domain.QuizStatus(status)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, question_text, correct_answer, option_a, option_b, option_c, image_filename, order_index
		FROM questions
		WHERE quiz_id = ? AND deleted_at IS NULL
		ORDER BY order_index, id`, quizID)
	if err != nil {
		return domain.Quiz{}, domain.StorageFailure("load questions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			q       domain.QuestionDefinition
			options [3]sql.NullString
			image   sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.CorrectAnswer, &options[0], &options[1], &options[2], &image, &q.AuthoredOrder); err != nil {
			return domain.Quiz{}, domain.StorageFailure("scan question", err)
		}
		q.IncorrectAnswers = make([]string, 0, len(options))
		for _, opt := range options {
			if opt.Valid && opt.String != "" {
				q.IncorrectAnswers = append(q.IncorrectAnswers, opt.String)
			}
		}
		q.ImageRef = image.String
		quiz.Questions = append(quiz.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Quiz{}, domain.StorageFailure("load questions", err)
	}
	return quiz, nil
}

func (s *Store) SaveResult(ctx context.Context, result domain.QuizResult) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO quiz_results (player_id, quiz_id, score, total_questions, time_spent, completed_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		result.PlayerID, result.QuizID, result.Score, result.TotalQuestions, result.TimeSpentSeconds,
		result.CompletedAt.Unix(),
	)
	if err != nil {
		return 0, domain.StorageFailure("save result", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, domain.StorageFailure("save result", err)
	}
	return id, nil
}

func (s *Store) Result(ctx context.Context, id int64) (domain.QuizResult, error) {
	result := domain.QuizResult{ID: id}
	var completedAt int64
	err := s.db.QueryRowContext(ctx, `
		SELECT player_id, quiz_id, score, total_questions, time_spent, completed_at
		FROM quiz_results WHERE id = ?`, id,
	).Scan(&result.PlayerID, &result.QuizID, &result.Score, &result.TotalQuestions, &result.TimeSpentSeconds, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.QuizResult{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.QuizResult{}, domain.StorageFailure("load result", err)
	}
	result.CompletedAt = time.Unix(completedAt, 0).UTC()
	return result, nil
}

// UpsertQuiz replaces a quiz and soft-deletes questions it no longer lists.
func (s *Store) UpsertQuiz(ctx context.Context, quiz domain.Quiz) error {
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		now := time.Now().Unix()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO quizzes (id, title, status, is_public, shuffle_questions, shuffle_answers, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
			  title = excluded.title, status = excluded.status, is_public = excluded.is_public,
			  shuffle_questions = excluded.shuffle_questions, shuffle_answers = excluded.shuffle_answers,
			  updated_at = excluded.updated_at`,
			quiz.ID, quiz.Title, string(quiz.Status), quiz.Public, quiz.ShuffleQuestions, quiz.ShuffleAnswers, now,
		); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE questions SET deleted_at = ? WHERE quiz_id = ? AND deleted_at IS NULL`, now, quiz.ID,
		); err != nil {
			return err
		}
		for _, q := range quiz.Questions {
			var opts [3]sql.NullString
			for i := 0; i < len(q.IncorrectAnswers) && i < len(opts); i++ {
				opts[i] = sql.NullString{String: q.IncorrectAnswers[i], Valid: true}
			}
			image := sql.NullString{String: q.ImageRef, Valid: q.ImageRef != ""}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO questions (id, quiz_id, question_text, correct_answer, option_a, option_b, option_c, image_filename, order_index, deleted_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
				ON CONFLICT (id) DO UPDATE SET
				  quiz_id = excluded.quiz_id, question_text = excluded.question_text,
				  correct_answer = excluded.correct_answer, option_a = excluded.option_a,
				  option_b = excluded.option_b, option_c = excluded.option_c,
				  image_filename = excluded.image_filename, order_index = excluded.order_index,
				  deleted_at = NULL`,
				q.ID, quiz.ID, q.Text, q.CorrectAnswer, opts[0], opts[1], opts[2], image, q.AuthoredOrder,
			); err != nil {
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

// withTx runs fn in a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if e := tx.Commit(); e != nil {
			err = fmt.Errorf("commit: %w", e)
		}
	}()
	err = fn(tx)
	return
}
