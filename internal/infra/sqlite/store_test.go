package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"brainchild-quiz-service/internal/domain"
)

func TestStoreQuizRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	quiz := domain.Quiz{
		ID:             "quiz-1",
		Title:          "Capitals",
		Status:         domain.QuizActive,
		Public:         true,
		ShuffleAnswers: true,
		Questions: []domain.QuestionDefinition{
			{ID: "q2", Text: "Capital of Italy?", CorrectAnswer: "Rome", IncorrectAnswers: []string{"Milan"}, AuthoredOrder: 2},
			{ID: "q1", Text: "Capital of France?", CorrectAnswer: "Paris", IncorrectAnswers: []string{"London", "Rome", "Berlin"}, ImageRef: "paris.png", AuthoredOrder: 1},
		},
	}
	if err := store.UpsertQuiz(ctx, quiz); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.LoadQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Title != "Capitals" || !got.CanBePlayed() || got.ShuffleQuestions || !got.ShuffleAnswers {
		t.Fatalf("quiz settings lost: %+v", got)
	}
	if len(got.Questions) != 2 || got.Questions[0].ID != "q1" {
		t.Fatalf("expected questions in authored order, got %+v", got.Questions)
	}
	if len(got.Questions[0].IncorrectAnswers) != 3 || got.Questions[0].ImageRef != "paris.png" {
		t.Fatalf("question content lost: %+v", got.Questions[0])
	}

	// Re-seeding without q2 soft-deletes it.
	quiz.Questions = quiz.Questions[1:]
	if err := store.UpsertQuiz(ctx, quiz); err != nil {
		t.Fatalf("upsert again: %v", err)
	}
	got, _ = store.LoadQuiz(ctx, "quiz-1")
	if len(got.Questions) != 1 || got.Questions[0].ID != "q1" {
		t.Fatalf("expected q2 removed, got %+v", got.Questions)
	}
}

func TestStoreUnknownQuiz(t *testing.T) {
	store := openTestStore(t)
	if _, err := store.LoadQuiz(context.Background(), "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreSaveResult(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	if err := store.UpsertQuiz(ctx, domain.Quiz{ID: "quiz-1", Title: "Capitals", Status: domain.QuizActive}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	result := domain.QuizResult{PlayerID: "u1", QuizID: "quiz-1", Score: 1, TotalQuestions: 2, TimeSpentSeconds: 30, CompletedAt: time.Now()}
	id1, err := store.SaveResult(ctx, result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	id2, err := store.SaveResult(ctx, result)
	if err != nil {
		t.Fatalf("save 2: %v", err)
	}
	if id1 <= 0 || id2 != id1+1 {
		t.Fatalf("expected increasing ids, got %d then %d", id1, id2)
	}

	got, err := store.Result(ctx, id1)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if got.ID != id1 || got.PlayerID != "u1" || got.Score != 1 || got.TotalQuestions != 2 || got.TimeSpentSeconds != 30 {
		t.Fatalf("unexpected result %+v", got)
	}
	if got.CompletedAt.Unix() != result.CompletedAt.Unix() {
		t.Fatalf("completion time lost: %v vs %v", got.CompletedAt, result.CompletedAt)
	}
	if _, err := store.Result(ctx, id2+100); !errors.Is(err, domain.ErrResultNotFound) {
		t.Fatalf("expected result not found, got %v", err)
	}
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "quiz.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}
