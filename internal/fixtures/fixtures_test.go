package fixtures

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"brainchild-quiz-service/internal/domain"
)

const sample = `
quizzes:
  - id: capitals
    title: European capitals
    public: true
    shuffleAnswers: true
    questions:
      - id: q1
        text: What is the capital of France?
        correctAnswer: Paris
        incorrectAnswers: [London, Rome]
      - id: q2
        text: What is the capital of Italy?
        correctAnswer: Rome
        incorrectAnswers: [Milan]
        imageRef: colosseum.png
`

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quizzes.yaml")
	if err := os.WriteFile(path, []byte(sample), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	quizzes, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected one quiz, got %d", len(quizzes))
	}
	quiz := quizzes[0]
	if quiz.Status != domain.QuizActive || !quiz.CanBePlayed() {
		t.Fatalf("expected active public quiz, got %+v", quiz)
	}
	if quiz.Questions[0].AuthoredOrder != 1 || quiz.Questions[1].AuthoredOrder != 2 {
		t.Fatalf("expected file order, got %+v", quiz.Questions)
	}
	if quiz.Questions[1].ImageRef != "colosseum.png" || len(quiz.Questions[0].IncorrectAnswers) != 2 {
		t.Fatalf("question fields lost: %+v", quiz.Questions)
	}
}

func TestParseRejectsInvalidQuizzes(t *testing.T) {
	cases := map[string]string{
		"missing title": `
quizzes:
  - id: a
    questions: []
`,
		"too many incorrect answers": `
quizzes:
  - id: a
    title: A
    questions:
      - id: q1
        text: Pick one
        correctAnswer: x
        incorrectAnswers: [a, b, c, d]
`,
		"blank correct answer": `
quizzes:
  - id: a
    title: A
    questions:
      - id: q1
        text: Pick one
        correctAnswer: "  "
`,
		"duplicate quiz": `
quizzes:
  - id: a
    title: A
  - id: a
    title: B
`,
		"unknown status": `
quizzes:
  - id: a
    title: A
    status: paused
`,
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(strings.TrimSpace(doc))); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
