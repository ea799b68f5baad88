// internal/cards/cards.go
//
// Multiple-choice translation quiz.
// Each question shows a random word of the grade with its correct translation
// and up to three distinct wrong ones, in random order. A correct answer is
// worth 10 points; the caller moves on after NextDelay (2s when correct so the
// learning card can be read, 3s when wrong so the right answer can be seen).

package cards

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/words"
)

const (
	Points       = 10
	WrongOptions = 3
	CorrectDelay = 2 * time.Second
	WrongDelay   = 3 * time.Second
)

var (
	ErrNoWords   = errors.New("no words for grade")
	ErrBadOption = errors.New("option out of range")
	ErrAnswered  = errors.New("question already answered")
)

// WordSource provides the words of a grade.
type WordSource interface {
	ForGrade(grade int) []words.Word
}

// Question is what the player sees. The correct index is not exposed.
type Question struct {
	Number  int      `json:"number"`
	Word    string   `json:"word"`
	Options []string `json:"options"`
}

// Result is returned by Answer.
type Result struct {
	Correct  bool       `json:"correct"`
	Answer   int        `json:"answer"` // index of the correct option
	Score    int        `json:"score"`
	Word     words.Word `json:"word"`
	NextInMs int64      `json:"nextInMs"`
}

// Game is one player's card quiz.
type Game struct {
	mu sync.Mutex

	id    string
	grade int
	pool  []words.Word
	rng   *rand.Rand

	number   int
	word     words.Word
	options  []string
	correct  int
	answered bool

	score, right, wrong int
}

// New starts a quiz with its first question. rng may be nil.
func New(src WordSource, grade int, rng *rand.Rand) (*Game, error) {
	pool := src.ForGrade(grade)
	if len(pool) == 0 {
		return nil, fmt.Errorf("grade %d: %w", grade, ErrNoWords)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	g := &Game{id: uuid.NewString(), grade: grade, pool: pool, rng: rng}
	g.nextLocked()
	log.Info().Str("gameId", g.id).Int("grade", grade).Int("words", len(pool)).Msg("card game started")
	return g, nil
}

// ID returns the game identifier.
func (g *Game) ID() string { return g.id }

// Question returns the current question.
func (g *Game) Question() Question {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.questionLocked()
}

func (g *Game) questionLocked() Question {
	return Question{Number: g.number, Word: g.word.Text, Options: append([]string(nil), g.options...)}
}

// Answer checks option i of the current question.
func (g *Game) Answer(i int) (Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.answered {
		return Result{}, ErrAnswered
	}
	if i < 0 || i >= len(g.options) {
		return Result{}, fmt.Errorf("option %d: %w", i, ErrBadOption)
	}
	g.answered = true

	res := Result{Answer: g.correct, Word: g.word, Correct: i == g.correct}
	if res.Correct {
		g.score += Points
		g.right++
		res.NextInMs = CorrectDelay.Milliseconds()
	} else {
		g.wrong++
		res.NextInMs = WrongDelay.Milliseconds()
	}
	res.Score = g.score
	log.Debug().Str("gameId", g.id).Str("word", g.word.Text).Bool("correct", res.Correct).Msg("card answered")
	return res, nil
}

// Next moves to a new question. Unanswered questions are simply replaced.
func (g *Game) Next() Question {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextLocked()
	return g.questionLocked()
}

// Restart zeroes the score and draws a fresh question.
func (g *Game) Restart() Question {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.score, g.right, g.wrong, g.number = 0, 0, 0, 0
	g.nextLocked()
	return g.questionLocked()
}

// Stats is the running tally.
type Stats struct {
	Score int `json:"score"`
	Right int `json:"right"`
	Wrong int `json:"wrong"`
}

func (g *Game) Stats() Stats {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Stats{Score: g.score, Right: g.right, Wrong: g.wrong}
}

func (g *Game) nextLocked() {
	g.number++
	g.answered = false
	g.word = g.pool[g.rng.IntN(len(g.pool))]

	var wrong []string
	seen := map[string]bool{g.word.Translation: true}
	for _, k := range g.rng.Perm(len(g.pool)) {
		t := g.pool[k].Translation
		if seen[t] {
			continue
		}
		seen[t] = true
		wrong = append(wrong, t)
		if len(wrong) == WrongOptions {
			break
		}
	}

	g.options = append([]string{g.word.Translation}, wrong...)
	g.rng.Shuffle(len(g.options), func(i, j int) { g.options[i], g.options[j] = g.options[j], g.options[i] })
	for i, o := range g.options {
		if o == g.word.Translation {
			g.correct = i
			break
		}
	}
}
