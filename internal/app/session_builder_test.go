package app_test

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"brainchild-quiz-service/internal/app"
	"brainchild-quiz-service/internal/domain"
)

func TestBuildRejectsEmptyQuiz(t *testing.T) {
	builder := app.NewSessionBuilder()

	if _, err := builder.Build(app.QuizPlan{QuizID: "quiz-1"}, "u1"); !errors.Is(err, domain.ErrEmptyQuiz) {
		t.Fatalf("expected empty quiz error, got %v", err)
	}

	blank := app.QuizPlan{QuizID: "quiz-1", Questions: []domain.QuestionDefinition{
		{ID: "q1", Text: "No answer", CorrectAnswer: "   ", IncorrectAnswers: []string{"x"}},
	}}
	if _, err := builder.Build(blank, "u1"); !errors.Is(err, domain.ErrEmptyQuiz) {
		t.Fatalf("expected empty quiz error for unanswerable questions, got %v", err)
	}
}

func TestBuildUsesAuthoredOrder(t *testing.T) {
	startedAt := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	builder := app.NewSessionBuilderWith(app.Shuffler{}, func() time.Time { return startedAt })

	plan := app.QuizPlan{
		QuizID: "quiz-1",
		Questions: []domain.QuestionDefinition{
			{ID: "q3", Text: "Third", CorrectAnswer: "c", IncorrectAnswers: []string{"x"}, AuthoredOrder: 3},
			{ID: "q1", Text: "First", CorrectAnswer: "a", IncorrectAnswers: []string{"x", " ", "y"}, AuthoredOrder: 1},
			{ID: "q2", Text: "Second", CorrectAnswer: "b", AuthoredOrder: 2},
		},
	}
	session, err := builder.Build(plan, "u1")
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if session.ID == "" || session.PlayerID != "u1" || session.QuizID != "quiz-1" {
		t.Fatalf("unexpected identity fields: %+v", session)
	}
	if session.Cursor != 0 || session.Score != 0 || len(session.Answers) != 0 || !session.StartedAt.Equal(startedAt) {
		t.Fatalf("unexpected initial progress: %+v", session)
	}
	for i, id := range []string{"q1", "q2", "q3"} {
		q := session.Questions[i]
		if q.QuestionID != id || q.DisplayOrder != i+1 {
			t.Fatalf("position %d: expected %s, got %s (display order %d)", i, id, q.QuestionID, q.DisplayOrder)
		}
	}
	if n := len(session.Questions[0].Alternatives); n != 3 {
		t.Fatalf("expected blank incorrect answer dropped, got %d alternatives", n)
	}
	if n := len(session.Questions[1].Alternatives); n != 1 {
		t.Fatalf("expected degenerate question kept with one alternative, got %d", n)
	}
	if plan.Questions[1].IncorrectAnswers[1] != " " {
		t.Fatalf("build mutated the plan")
	}
}

func TestBuildShufflesQuestionOrder(t *testing.T) {
	builder := app.NewSessionBuilderWith(app.NewShuffler(rand.New(rand.NewPCG(7, 7))), time.Now)
	plan := app.QuizPlan{QuizID: "quiz-1", ShuffleQuestions: true}
	for i := 1; i <= 6; i++ {
		plan.Questions = append(plan.Questions, domain.QuestionDefinition{
			ID: string(rune('a' + i)), Text: "Q", CorrectAnswer: "yes", IncorrectAnswers: []string{"no"}, AuthoredOrder: i,
		})
	}

	orders := map[string]bool{}
	for i := 0; i < 20; i++ {
		session, err := builder.Build(plan, "u1")
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		key := ""
		seen := map[string]bool{}
		for _, q := range session.Questions {
			key += q.QuestionID
			seen[q.QuestionID] = true
		}
		if len(seen) != 6 {
			t.Fatalf("questions lost or duplicated: %s", key)
		}
		orders[key] = true
	}
	if len(orders) < 2 {
		t.Fatalf("expected question order to vary across attempts, got %v", orders)
	}
}

func TestBuildGivesEachAttemptAFreshID(t *testing.T) {
	builder := app.NewSessionBuilder()
	plan := app.QuizPlan{QuizID: "quiz-1", Questions: []domain.QuestionDefinition{
		{ID: "q1", Text: "Q", CorrectAnswer: "yes", IncorrectAnswers: []string{"no"}},
	}}
	a, _ := builder.Build(plan, "u1")
	b, _ := builder.Build(plan, "u1")
	if a.ID == b.ID {
		t.Fatalf("expected distinct session ids, got %s twice", a.ID)
	}
}
