// internal/game/types.go
//
// Core type definitions for the line (path-memory) game.
// Defines:
//   - Difficulty and its Settings table.
//   - Phase: the round state machine's states.
//   - CellState, Cue, Prompt: vocabulary shared with the Presenter.
//   - Status, Summary, Snapshot: values handed to the presentation layer.

package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/robalobadob/linewords/internal/words"
)

// Difficulty selects words per round, attempts and observe timing.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// ParseDifficulty accepts easy/medium/hard (case-insensitive); empty means
// medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case "":
		return Medium, nil
	case Easy, Medium, Hard:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// Unlimited marks a difficulty without an attempt cap.
const Unlimited = 0

// Settings is the per-difficulty rule set.
type Settings struct {
	WordsPerRound   int
	MaxAttempts     int // Unlimited (0) means no cap
	ObserveSpeed    time.Duration
	ObserveInterval time.Duration
	MinLen, MaxLen  int // word length bucket; 0 means unbounded
}

var settingsTable = map[Difficulty]Settings{
	Easy:   {WordsPerRound: 1, MaxAttempts: Unlimited, ObserveSpeed: 1000 * time.Millisecond, ObserveInterval: 300 * time.Millisecond, MaxLen: 4},
	Medium: {WordsPerRound: 2, MaxAttempts: 3, ObserveSpeed: 800 * time.Millisecond, ObserveInterval: 200 * time.Millisecond, MinLen: 4, MaxLen: 6},
	Hard:   {WordsPerRound: 3, MaxAttempts: 2, ObserveSpeed: 600 * time.Millisecond, ObserveInterval: 100 * time.Millisecond, MinLen: 5},
}

// SettingsFor returns the rule set of d (medium for unknown values).
func SettingsFor(d Difficulty) Settings {
	if s, ok := settingsTable[d]; ok {
		return s
	}
	return settingsTable[Medium]
}

// fits reports whether w falls in the length bucket.
func (s Settings) fits(w words.Word) bool {
	n := w.Len()
	return (s.MinLen == 0 || n >= s.MinLen) && (s.MaxLen == 0 || n <= s.MaxLen)
}

// exhausted reports whether attempts reached the cap.
func (s Settings) exhausted(attempts int) bool {
	return s.MaxAttempts != Unlimited && attempts >= s.MaxAttempts
}

// Fixed delays of the round lifecycle.
const (
	WordGap       = 1000 * time.Millisecond // between words while observing
	NextWordDelay = 1500 * time.Millisecond // completed word → prompt for the next
	ResultDelay   = 500 * time.Millisecond  // last word completed → result
	ErrorFlash    = 300 * time.Millisecond
	RevealDelay   = 2000 * time.Millisecond // path revealed → retry/skip offered
	PausePoll     = 100 * time.Millisecond
	TimerTick     = time.Second
)

// DefaultTotalWords is the number of words in one game.
const DefaultTotalWords = 10

// Phase is the round state machine state.
type Phase string

const (
	PhaseReady   Phase = "ready"
	PhaseObserve Phase = "observe"
	PhaseDraw    Phase = "draw"
	PhaseReveal  Phase = "reveal" // attempts exhausted, waiting for retry/skip
	PhaseResult  Phase = "result"
	PhaseOver    Phase = "over"
)

// CellState is the visual state of one grid cell.
type CellState string

const (
	CellNormal    CellState = "normal"
	CellShowing   CellState = "showing"
	CellCorrect   CellState = "correct"
	CellCompleted CellState = "completed"
	CellError     CellState = "error"
)

// Cue names an audio cue.
type Cue string

const (
	CueDing    Cue = "ding"
	CueCorrect Cue = "correct"
	CueWrong   Cue = "wrong"
	CueSuccess Cue = "success"
	CueReady   Cue = "ready"
)

// Prompt names a set of buttons offered to the player.
type Prompt string

const (
	PromptRetrySkip Prompt = "retry_skip"
	PromptContinue  Prompt = "continue"
)

// Outcome reports what a single input did.
type Outcome string

const (
	Ignored   Outcome = "ignored"
	Accepted  Outcome = "accepted"
	Mismatch  Outcome = "mismatch"
	WordDone  Outcome = "word_done"
	RoundDone Outcome = "round_done"
	Revealed  Outcome = "revealed"
)

// CellView is the last rendered content of a cell.
type CellView struct {
	Letter string    `json:"letter"`
	State  CellState `json:"state"`
}

// Status is the status-bar content.
type Status struct {
	Phase    Phase  `json:"phase"`
	Score    int    `json:"score"`
	Combo    int    `json:"combo"`
	Progress string `json:"progress"` // "current/total"
	Word     string `json:"word"`     // current round's word info
	Errors   int    `json:"errors"`
	Timer    string `json:"timer"` // mm:ss
	Paused   bool   `json:"paused"`
}

// Summary is handed to the presentation layer at game over.
type Summary struct {
	Score          int   `json:"score"`
	WordsCompleted int   `json:"wordsCompleted"`
	TotalWords     int   `json:"totalWords"`
	Accuracy       int   `json:"accuracy"` // percent
	Errors         int   `json:"errors"`
	ElapsedMs      int64 `json:"elapsedMs"`
}

// Snapshot is a full copy of the session state for reconnecting clients.
type Snapshot struct {
	ID          string       `json:"id"`
	Grade       int          `json:"grade"`
	Difficulty  Difficulty   `json:"difficulty"`
	Rows        int          `json:"rows"`
	Cols        int          `json:"cols"`
	Phase       Phase        `json:"phase"`
	Status      Status       `json:"status"`
	Board       []CellView   `json:"board"`
	Words       []words.Word `json:"words,omitempty"` // current round
	DrawingWord int          `json:"drawingWord"`
	Attempts    int          `json:"attempts"`
	Epoch       uint64       `json:"epoch"`
}

// formatTimer renders d as mm:ss.
func formatTimer(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
