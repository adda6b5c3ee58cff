package http

import (
	"net/http/httptest"
	"testing"
	"time"

	"brainchild-quiz-service/internal/app"
	"brainchild-quiz-service/internal/domain"
	"brainchild-quiz-service/internal/infra/memory"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *PlayerAuth) {
	t.Helper()
	sessions := memory.NewSessionStore(0)
	quizzes := memory.NewQuizRepository(memory.NewStaticQuizLoader(sampleQuiz()), time.Minute)
	service := app.NewPlayService(quizzes, sessions, memory.NewResultStore())
	auth := NewPlayerAuth(testSecret, "quiz-test")

	server := httptest.NewServer(NewRouter(service, auth, nil))
	t.Cleanup(server.Close)
	return server, auth
}

func tokenFor(t *testing.T, auth *PlayerAuth, playerID string) string {
	t.Helper()
	token, err := auth.IssueToken(playerID, time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

// sampleQuiz plays in authored order with unshuffled answers, so A is always correct.
func sampleQuiz() domain.Quiz {
	return domain.Quiz{
		ID:     "quiz-1",
		Title:  "Arithmetic",
		Status: domain.QuizActive,
		Public: true,
		Questions: []domain.QuestionDefinition{
			{ID: "q1", Text: "What is 2 + 2?", CorrectAnswer: "4", IncorrectAnswers: []string{"3", "5"}, AuthoredOrder: 1},
			{ID: "q2", Text: "What is 3 x 3?", CorrectAnswer: "9", IncorrectAnswers: []string{"6", "12", "8"}, AuthoredOrder: 2},
		},
	}
}
