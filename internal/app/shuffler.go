package app

import (
	"math/rand/v2"
	"strconv"

	"brainchild-quiz-service/internal/domain"
)

var letters = [...]string{"A", "B", "C", "D"}

// Shuffler randomizes answer and question order. The zero value draws from the
// runtime-seeded global generator, which players cannot predict.
type Shuffler struct {
	rnd *rand.Rand
}

// NewShuffler returns a shuffler using rnd, or the global generator when rnd is nil.
func NewShuffler(rnd *rand.Rand) Shuffler {
	return Shuffler{rnd: rnd}
}

// Shuffle uses the global generator; see Shuffler.Shuffle.
func Shuffle(correct string, incorrect []string, enabled bool) []domain.Alternative {
	return Shuffler{}.Shuffle(correct, incorrect, enabled)
}

// Shuffle builds the alternatives for one question. The correct answer leads
// when enabled is false; otherwise every ordering is equally likely. Letters
// are assigned by final position.
func (s Shuffler) Shuffle(correct string, incorrect []string, enabled bool) []domain.Alternative {
	alts := make([]domain.Alternative, 0, len(incorrect)+1)
	alts = append(alts, domain.Alternative{Text: correct, IsCorrect: true})
	for _, text := range incorrect {
		alts = append(alts, domain.Alternative{Text: text})
	}

	if enabled {
		s.permute(len(alts), func(i, j int) { alts[i], alts[j] = alts[j], alts[i] })
	}

	for i := range alts {
		alts[i].Position = i
		alts[i].Letter = letterFor(i)
	}
	return alts
}

func (s Shuffler) permute(n int, swap func(i, j int)) {
	if s.rnd != nil {
		s.rnd.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

// letterFor falls back to 1-based numbers past D.
func letterFor(position int) string {
	if position < len(letters) {
		return letters[position]
	}
	return strconv.Itoa(position + 1)
}
