package app

import (
	"log"
	"sort"
	"strings"
	"time"

	"brainchild-quiz-service/internal/domain"
	"github.com/google/uuid"
)

// QuizPlan is the input to a session build: a quiz's questions plus its shuffle switches.
type QuizPlan struct {
	QuizID           string
	Questions        []domain.QuestionDefinition
	ShuffleQuestions bool
	ShuffleAnswers   bool
}

// SessionBuilder turns a quiz plan into a fresh, immutable play session snapshot.
type SessionBuilder struct {
	shuffler Shuffler
	now      func() time.Time
	newID    func() string
}

func NewSessionBuilder() *SessionBuilder {
	return NewSessionBuilderWith(Shuffler{}, time.Now)
}

// NewSessionBuilderWith allows deterministic shuffles and timestamps in tests.
func NewSessionBuilderWith(shuffler Shuffler, now func() time.Time) *SessionBuilder {
	return &SessionBuilder{
		shuffler: shuffler,
		now:      now,
		newID:    func() string { return uuid.NewString() },
	}
}

// Build prepares every playable question of the plan for playerID.
func (b *SessionBuilder) Build(plan QuizPlan, playerID string) (domain.PlaySession, error) {
	playable := playableQuestions(plan)
	if len(playable) == 0 {
		return domain.PlaySession{}, domain.ErrEmptyQuiz
	}

	if plan.ShuffleQuestions {
		b.shuffler.permute(len(playable), func(i, j int) { playable[i], playable[j] = playable[j], playable[i] })
	} else {
		sort.SliceStable(playable, func(i, j int) bool {
			return playable[i].AuthoredOrder < playable[j].AuthoredOrder
		})
	}

	prepared := make([]domain.PreparedQuestion, 0, len(playable))
	for i, q := range playable {
		prepared = append(prepared, domain.PreparedQuestion{
			QuestionID:   q.ID,
			Text:         q.Text,
			ImageRef:     q.ImageRef,
			Alternatives: b.shuffler.Shuffle(q.CorrectAnswer, q.IncorrectAnswers, plan.ShuffleAnswers),
			DisplayOrder: i + 1,
		})
	}

	return domain.PlaySession{
		ID:        b.newID(),
		PlayerID:  playerID,
		QuizID:    plan.QuizID,
		Questions: prepared,
		Cursor:    0,
		Answers:   []domain.RecordedAnswer{},
		StartedAt: b.now(),
		Score:     0,
	}, nil
}

// playableQuestions drops questions without a correct answer and blank
// incorrect answers. The result never aliases the plan's slices.
func playableQuestions(plan QuizPlan) []domain.QuestionDefinition {
	out := make([]domain.QuestionDefinition, 0, len(plan.Questions))
	for _, q := range plan.Questions {
		if strings.TrimSpace(q.CorrectAnswer) == "" {
			log.Printf("quiz %s: skipping question %s without a correct answer", plan.QuizID, q.ID)
			continue
		}
		incorrect := make([]string, 0, len(q.IncorrectAnswers))
		for _, text := range q.IncorrectAnswers {
			if strings.TrimSpace(text) != "" {
				incorrect = append(incorrect, text)
			}
		}
		if len(incorrect) == 0 {
			log.Printf("quiz %s: question %s has no incorrect answers, playing it with a single alternative", plan.QuizID, q.ID)
		}
		q.IncorrectAnswers = incorrect
		out = append(out, q)
	}
	return out
}
