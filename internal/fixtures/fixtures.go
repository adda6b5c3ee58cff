// Package fixtures reads quiz definitions from YAML files used for demos and seeding.
package fixtures

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"brainchild-quiz-service/internal/domain"
	"gopkg.in/yaml.v3"
)

const (
	maxIncorrectAnswers = 3
	maxQuestionText     = 2000
	maxAnswerText       = 500
)

type file struct {
	Quizzes []domain.Quiz `yaml:"quizzes"`
}

// Load reads and validates the quizzes in a YAML fixture file.
func Load(path string) ([]domain.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes fixture YAML, applies defaults and validates every quiz.
func Parse(data []byte) ([]domain.Quiz, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	seen := make(map[string]bool, len(f.Quizzes))
	for i := range f.Quizzes {
		quiz := &f.Quizzes[i]
		applyDefaults(quiz)
		if err := validate(*quiz); err != nil {
			return nil, fmt.Errorf("quiz %q: %w", quiz.ID, err)
		}
		if seen[quiz.ID] {
			return nil, fmt.Errorf("quiz %q: duplicate id", quiz.ID)
		}
		seen[quiz.ID] = true
	}
	return f.Quizzes, nil
}

func applyDefaults(quiz *domain.Quiz) {
	if quiz.Status == "" {
		quiz.Status = domain.QuizActive
	}
	// Unordered fixtures keep their file order.
	ordered := false
	for _, q := range quiz.Questions {
		if q.AuthoredOrder != 0 {
			ordered = true
			break
		}
	}
	if !ordered {
		for i := range quiz.Questions {
			quiz.Questions[i].AuthoredOrder = i + 1
		}
	}
}

func validate(quiz domain.Quiz) error {
	if strings.TrimSpace(quiz.ID) == "" {
		return errors.New("id is required")
	}
	if strings.TrimSpace(quiz.Title) == "" {
		return errors.New("title is required")
	}
	switch quiz.Status {
	case domain.QuizActive, domain.QuizInactive, domain.QuizArchived, domain.QuizDeleted:
	default:
		return fmt.Errorf("unknown status %q", quiz.Status)
	}

	ids := make(map[string]bool, len(quiz.Questions))
	for _, q := range quiz.Questions {
		if q.ID == "" || ids[q.ID] {
			return fmt.Errorf("question ids must be unique and non-empty (got %q)", q.ID)
		}
		ids[q.ID] = true

		text := strings.TrimSpace(q.Text)
		if text == "" || len(text) > maxQuestionText {
			return fmt.Errorf("question %s: text must be 1-%d characters", q.ID, maxQuestionText)
		}
		correct := strings.TrimSpace(q.CorrectAnswer)
		if correct == "" || len(correct) > maxAnswerText {
			return fmt.Errorf("question %s: correct answer must be 1-%d characters", q.ID, maxAnswerText)
		}
		if len(q.IncorrectAnswers) > maxIncorrectAnswers {
			return fmt.Errorf("question %s: at most %d incorrect answers", q.ID, maxIncorrectAnswers)
		}
		for _, opt := range q.IncorrectAnswers {
			if len(opt) > maxAnswerText {
				return fmt.Errorf("question %s: incorrect answer longer than %d characters", q.ID, maxAnswerText)
			}
		}
	}
	return nil
}
