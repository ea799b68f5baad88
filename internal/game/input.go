// internal/game/input.go
//
// Input validation for the draw phase.
// Clicks and drags arrive as cell indices and are checked one step at a time
// against the path of the word being drawn:
//   - the first cell must be the path's start; a wrong start flags an error
//     and leaves the user path empty;
//   - every later cell must be the next expected index; a wrong cell flags an
//     error and clears the user path (the attempt counter keeps counting);
//   - reaching the path length completes the word.
// Errors here are game feedback, never returned as Go errors.

package game

import "fmt"

// Select handles a tap or click on cell i.
func (s *Session) Select(i int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkInputLocked(i); err != nil {
		return Ignored, err
	}
	return s.selectLocked(i), nil
}

// DragStart handles the cell under a new touch; it counts as a click.
func (s *Session) DragStart(i int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkInputLocked(i); err != nil {
		return Ignored, err
	}
	if !s.acceptingLocked() {
		return Ignored, nil
	}
	s.dragging = true
	s.lastDrag = i
	return s.selectLocked(i), nil
}

// DragMove handles a cell crossed while dragging. Cells already on the
// current user path and repeats of the previous cell are ignored.
func (s *Session) DragMove(i int) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkInputLocked(i); err != nil {
		return Ignored, err
	}
	if !s.dragging || !s.acceptingLocked() || i == s.lastDrag {
		return Ignored, nil
	}
	s.lastDrag = i
	if s.round.user[s.round.drawing].Contains(i) {
		return Ignored, nil
	}
	return s.selectLocked(i), nil
}

// DragEnd ends the current drag.
func (s *Session) DragEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dragging = false
	s.lastDrag = -1
}

func (s *Session) checkInputLocked(i int) error {
	if s.closed {
		return ErrClosed
	}
	if !s.grid.Contains(i) {
		return fmt.Errorf("cell %d: %w", i, ErrBadCell)
	}
	return nil
}

// acceptingLocked reports whether draw input is live.
func (s *Session) acceptingLocked() bool {
	return s.phase == PhaseDraw && !s.paused && s.round != nil && !s.round.advancing
}

func (s *Session) selectLocked(i int) Outcome {
	if !s.acceptingLocked() {
		return Ignored
	}
	r := s.round
	path := r.paths[r.drawing]
	user := r.user[r.drawing]
	if i == path[len(user)] {
		return s.acceptLocked(i)
	}
	return s.mismatchLocked(i, len(user) > 0)
}

// acceptLocked extends the user path by i.
func (s *Session) acceptLocked(i int) Outcome {
	r := s.round
	w := r.drawing
	user := r.user[w]
	s.paintLocked(i, r.letters[w][len(user)], CellCorrect)
	if len(user) > 0 {
		s.out.Line(user[len(user)-1], i, false)
	}
	r.user[w] = append(user, i)
	s.out.Cue(CueCorrect)

	if len(r.user[w]) < len(r.paths[w]) {
		return Accepted
	}
	return s.wordCompleteLocked()
}

// wordCompleteLocked schedules the move to the next word or to the result.
// Input is ignored until the delayed transition runs.
func (s *Session) wordCompleteLocked() Outcome {
	r := s.round
	r.advancing = true
	s.dragging = false
	epoch := s.epoch

	if r.drawing < len(r.words)-1 {
		s.out.Hint(fmt.Sprintf("%s done! Next word coming...", r.words[r.drawing].Text))
		s.clock.AfterFunc(NextWordDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if epoch != s.epoch || s.closed {
				return
			}
			s.nextWordLocked()
		})
		return WordDone
	}

	s.clock.AfterFunc(ResultDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if epoch != s.epoch || s.closed {
			return
		}
		s.resultLocked()
	})
	return RoundDone
}

// nextWordLocked dims the finished word (cells and lines stay on the board)
// and prompts for the next one.
func (s *Session) nextWordLocked() {
	r := s.round
	done := r.user[r.drawing]
	for k, i := range done {
		s.paintLocked(i, r.letters[r.drawing][k], CellCompleted)
		if k > 0 {
			s.out.Line(done[k-1], i, true)
		}
	}
	r.drawing++
	r.advancing = false
	s.out.Hint(s.drawHintLocked())
	s.pushStatusLocked()
}

// mismatchLocked flags a wrong cell. With reset, the partial user path is
// cleared as well.
func (s *Session) mismatchLocked(i int, reset bool) Outcome {
	r := s.round
	s.flashLocked(i)
	s.out.Cue(CueWrong)
	s.errors++
	r.attempts++
	if reset {
		s.resetUserPathLocked()
		s.out.Hint("Try again, you can do it!")
	}
	s.pushStatusLocked()

	if s.settings.exhausted(r.attempts) {
		s.revealLocked()
		return Revealed
	}
	return Mismatch
}

// flashLocked shows the error state on i, then restores whatever the board
// holds for i once ErrorFlash has passed.
func (s *Session) flashLocked(i int) {
	s.out.Cell(i, s.board[i].Letter, CellError)
	s.clock.AfterFunc(ErrorFlash, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return
		}
		v := s.board[i]
		s.out.Cell(i, v.Letter, v.State)
	})
}

// resetUserPathLocked clears the current word's user path and its lines.
func (s *Session) resetUserPathLocked() {
	r := s.round
	for _, i := range r.user[r.drawing] {
		s.paintLocked(i, "", CellNormal)
	}
	s.out.ClearLines(true)
	r.user[r.drawing] = nil
}

// revealLocked shows the correct path and offers retry/skip after a delay.
func (s *Session) revealLocked() {
	r := s.round
	s.phase = PhaseReveal
	s.dragging = false
	path := r.paths[r.drawing]
	for k, i := range path {
		s.paintLocked(i, r.letters[r.drawing][k], CellCorrect)
		if k > 0 {
			s.out.Line(path[k-1], i, false)
		}
	}
	s.out.Hint("This is the correct path, remember it!")
	s.pushStatusLocked()

	r.reveals++
	epoch, seq := s.epoch, r.reveals
	s.clock.AfterFunc(RevealDelay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if epoch != s.epoch || s.closed || s.phase != PhaseReveal || s.round != r || r.reveals != seq {
			return
		}
		s.out.Hint("Retry, or skip this word?")
		s.out.Prompt(PromptRetrySkip)
	})
}

// UserPath returns a copy of the path drawn so far for the current word.
func (s *Session) UserPath() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return nil
	}
	return append([]int(nil), s.round.user[s.round.drawing]...)
}

// Attempts returns the wrong selections made in the current round.
func (s *Session) Attempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return 0
	}
	return s.round.attempts
}

// Paths returns copies of the current round's target paths.
func (s *Session) Paths() [][]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.round == nil {
		return nil
	}
	out := make([][]int, len(s.round.paths))
	for i, p := range s.round.paths {
		out[i] = append([]int(nil), p...)
	}
	return out
}
