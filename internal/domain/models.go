package domain

import (
	"strconv"
	"time"
)

// QuizStatus is the lifecycle state of a quiz.
type QuizStatus string

const (
	QuizActive   QuizStatus = "active"
	QuizInactive QuizStatus = "inactive"
	QuizArchived QuizStatus = "archived"
	QuizDeleted  QuizStatus = "deleted"
)

// QuestionDefinition is an authored question as stored by persistence.
type QuestionDefinition struct {
	ID               string   `json:"id" yaml:"id"`
	Text             string   `json:"text" yaml:"text"`
	CorrectAnswer    string   `json:"correctAnswer" yaml:"correctAnswer"`
	IncorrectAnswers []string `json:"incorrectAnswers" yaml:"incorrectAnswers"`
	ImageRef         string   `json:"imageRef,omitempty" yaml:"imageRef,omitempty"`
	AuthoredOrder    int      `json:"authoredOrder" yaml:"authoredOrder"`
}

// ShuffleSettings are the per-quiz randomization switches.
type ShuffleSettings struct {
	ShuffleQuestions bool `json:"shuffleQuestions"`
	ShuffleAnswers   bool `json:"shuffleAnswers"`
}

// Quiz is a collection of questions plus its play settings.
type Quiz struct {
	ID               string               `json:"id" yaml:"id"`
	Title            string               `json:"title" yaml:"title"`
	Status           QuizStatus           `json:"status" yaml:"status"`
	Public           bool                 `json:"public" yaml:"public"`
	ShuffleQuestions bool                 `json:"shuffleQuestions" yaml:"shuffleQuestions"`
	ShuffleAnswers   bool                 `json:"shuffleAnswers" yaml:"shuffleAnswers"`
	Questions        []QuestionDefinition `json:"questions" yaml:"questions"`
}

// CanBePlayed reports whether the quiz is open to players.
func (q Quiz) CanBePlayed() bool {
	return q.Status == QuizActive && q.Public
}

// Settings returns the quiz shuffle switches.
func (q Quiz) Settings() ShuffleSettings {
	return ShuffleSettings{ShuffleQuestions: q.ShuffleQuestions, ShuffleAnswers: q.ShuffleAnswers}
}

// Alternative is one answer choice as shown to the player.
type Alternative struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
	Letter    string `json:"letter"`
	Position  int    `json:"position"`
}

// PreparedQuestion is a question with its alternatives in display order.
type PreparedQuestion struct {
	QuestionID   string        `json:"questionId"`
	Text         string        `json:"text"`
	ImageRef     string        `json:"imageRef,omitempty"`
	Alternatives []Alternative `json:"alternatives"`
	DisplayOrder int           `json:"displayOrder"`
}

// CorrectLetter returns the letter of the alternative flagged correct.
func (q PreparedQuestion) CorrectLetter() string {
	for _, alt := range q.Alternatives {
		if alt.IsCorrect {
			return alt.Letter
		}
	}
	return ""
}

// RecordedAnswer is one graded submission.
type RecordedAnswer struct {
	QuestionID   string `json:"questionId"`
	ChosenLetter string `json:"chosenLetter"`
	IsCorrect    bool   `json:"isCorrect"`
}

// PlaySession is a single attempt of one player at one quiz.
type PlaySession struct {
	ID        string             `json:"id"`
	PlayerID  string             `json:"playerId"`
	QuizID    string             `json:"quizId"`
	Questions []PreparedQuestion `json:"questions"`
	Cursor    int                `json:"cursor"`
	Answers   []RecordedAnswer   `json:"answers"`
	StartedAt time.Time          `json:"startedAt"`
	Score     int                `json:"score"`
}

// Complete reports whether every question has been graded.
func (s PlaySession) Complete() bool {
	return s.Cursor >= len(s.Questions)
}

// Clone returns a copy whose answer log can be appended to without aliasing.
// Questions are immutable after build and stay shared.
func (s PlaySession) Clone() PlaySession {
	c := s
	c.Answers = append([]RecordedAnswer(nil), s.Answers...)
	return c
}

// Grade is the outcome of one submission.
type Grade struct {
	QuestionIndex  int    `json:"questionIndex"`
	IsCorrect      bool   `json:"isCorrect"`
	CorrectLetter  string `json:"correctLetter"`
	IsLastQuestion bool   `json:"isLastQuestion"`
	Score          int    `json:"score"`
}

// Choice is an alternative without its correctness flag.
type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// QuestionView is the player-facing projection of the current question.
type QuestionView struct {
	Index      int      `json:"index"`
	Total      int      `json:"total"`
	QuestionID string   `json:"questionId"`
	Text       string   `json:"text"`
	ImageRef   string   `json:"imageRef,omitempty"`
	Choices    []Choice `json:"choices"`
}

// ViewAt projects the question at index i for display.
func (s PlaySession) ViewAt(i int) QuestionView {
	q := s.Questions[i]
	choices := make([]Choice, 0, len(q.Alternatives))
	for _, alt := range q.Alternatives {
		choices = append(choices, Choice{Letter: alt.Letter, Text: alt.Text})
	}
	return QuestionView{
		Index:      i,
		Total:      len(s.Questions),
		QuestionID: q.QuestionID,
		Text:       q.Text,
		ImageRef:   q.ImageRef,
		Choices:    choices,
	}
}

// QuizResult is the persisted outcome of a completed session.
type QuizResult struct {
	ID               int64     `json:"id"`
	PlayerID         string    `json:"playerId"`
	QuizID           string    `json:"quizId"`
	Score            int       `json:"score"`
	TotalQuestions   int       `json:"totalQuestions"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	CompletedAt      time.Time `json:"completedAt"`
}

// Percentage returns the score as a percentage rounded to one decimal.
func (r QuizResult) Percentage() float64 {
	if r.TotalQuestions == 0 {
		return 0
	}
	tenths := (r.Score*1000 + r.TotalQuestions/2) / r.TotalQuestions
	return float64(tenths) / 10
}

// GradeLetter maps the percentage onto an A-F scale.
func (r QuizResult) GradeLetter() string {
	p := r.Percentage()
	switch {
	case p >= 90:
		return "A"
	case p >= 80:
		return "B"
	case p >= 70:
		return "C"
	case p >= 60:
		return "D"
	default:
		return "F"
	}
}

// TimeDisplay renders the elapsed time as "3min 4s" or "42s".
func (r QuizResult) TimeDisplay() string {
	minutes := r.TimeSpentSeconds / 60
	seconds := r.TimeSpentSeconds % 60
	if minutes > 0 {
		return strconv.Itoa(minutes) + "min " + strconv.Itoa(seconds) + "s"
	}
	return strconv.Itoa(seconds) + "s"
}
