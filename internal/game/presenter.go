// internal/game/presenter.go
//
// Collaborator boundaries of the line game.
// The session never touches a UI toolkit: it renders through a Presenter and
// reads vocabulary through a WordSource.

package game

import "github.com/robalobadob/linewords/internal/words"

// WordSource supplies the vocabulary for a grade level. Membership must be
// deterministic; sampling and filtering happen in the session.
type WordSource interface {
	ForGrade(grade int) []words.Word
}

// Presenter renders game state. Calls are made while the session lock is
// held, so implementations must not call back into the session.
type Presenter interface {
	// Cell renders one grid cell.
	Cell(index int, letter string, state CellState)
	// Line draws a connector between two adjacent cells.
	Line(from, to int, completed bool)
	// ClearLines removes connectors; completed ones survive when keepCompleted.
	ClearLines(keepCompleted bool)
	Status(st Status)
	Hint(text string)
	Prompt(p Prompt)
	// LearningCard shows word, translation and example for the round's words.
	LearningCard(ws []words.Word)
	Cue(c Cue)
	Speak(text string)
	GameOver(sum Summary)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Cell(int, string, CellState) {}
func (Nop) Line(int, int, bool) {}
func (Nop) ClearLines(bool) {}
func (Nop) Status(Status) {}
func (Nop) Hint(string) {}
func (Nop) Prompt(Prompt) {}
func (Nop) LearningCard([]words.Word) {}
func (Nop) Cue(Cue) {}
func (Nop) Speak(string) {}
func (Nop) GameOver(Summary) {}
