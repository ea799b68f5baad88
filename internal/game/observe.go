// internal/game/observe.go
//
// The observe phase: each word is announced, then its letters flash one at a
// time along the path. The sequence is a flat list of steps walked by chained
// clock callbacks; every step re-checks the epoch and the pause flag before it
// touches the board.

package game

import (
	"fmt"
	"time"
)

type stepKind int

const (
	stepWord stepKind = iota // announce a word
	stepShow                 // show a letter
	stepHide                 // clear it again
)

type observeStep struct {
	kind   stepKind
	word   int
	cell   int
	letter string
	hold   time.Duration // wait after the step before the next one
}

// observeTask is one run of the observe sequence, owned by epoch.
type observeTask struct {
	epoch uint64
	steps []observeStep
	next  int
}

// beginObserveLocked invalidates any previous sequence and starts a new one.
func (s *Session) beginObserveLocked() {
	s.epoch++
	s.phase = PhaseObserve
	s.dragging = false
	s.clearBoardLocked()
	s.out.Hint("Watch the order the letters appear...")
	s.pushStatusLocked()

	t := &observeTask{epoch: s.epoch, steps: s.observeStepsLocked()}
	s.observe = t
	s.runObserveLocked(t)
}

func (s *Session) observeStepsLocked() []observeStep {
	r := s.round
	var steps []observeStep
	for w, path := range r.paths {
		steps = append(steps, observeStep{kind: stepWord, word: w})
		for i, cell := range path {
			steps = append(steps, observeStep{
				kind: stepShow, word: w, cell: cell, letter: r.letters[w][i], hold: s.settings.ObserveSpeed,
			})
			hide := observeStep{kind: stepHide, word: w, cell: cell}
			if i < len(path)-1 {
				hide.hold = s.settings.ObserveInterval
			} else if w < len(r.paths)-1 {
				hide.hold = WordGap
			}
			steps = append(steps, hide)
		}
	}
	return steps
}

// resumeObserve is the scheduled continuation of t.
func (s *Session) resumeObserve(t *observeTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runObserveLocked(t)
}

// runObserveLocked performs steps until one needs a hold, then schedules its
// own continuation. A stale task returns without side effects; a paused one
// polls again later without advancing.
func (s *Session) runObserveLocked(t *observeTask) {
	for {
		if t.epoch != s.epoch || s.closed {
			return
		}
		if s.paused {
			s.clock.AfterFunc(PausePoll, func() { s.resumeObserve(t) })
			return
		}
		if t.next >= len(t.steps) {
			s.beginDrawLocked()
			return
		}

		st := t.steps[t.next]
		t.next++
		switch st.kind {
		case stepWord:
			w := s.round.words[st.word]
			s.out.Speak(w.Text)
			if len(s.round.words) > 1 {
				s.out.Hint(fmt.Sprintf("Showing word %d: %s", st.word+1, w.Text))
			}
		case stepShow:
			s.paintLocked(st.cell, st.letter, CellShowing)
			s.out.Cue(CueDing)
		case stepHide:
			s.paintLocked(st.cell, "", CellNormal)
		}

		if st.hold > 0 {
			s.clock.AfterFunc(st.hold, func() { s.resumeObserve(t) })
			return
		}
	}
}

// ObserveStep reports the next step index of the live observe sequence and
// whether one is running.
func (s *Session) ObserveStep() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observe == nil || s.observe.epoch != s.epoch || s.phase != PhaseObserve {
		return 0, false
	}
	return s.observe.next, true
}

// beginDrawLocked hands the round to the input validator.
func (s *Session) beginDrawLocked() {
	r := s.round
	s.phase = PhaseDraw
	r.drawing = 0
	r.advancing = false
	for i := range r.user {
		r.user[i] = nil
	}
	for i, v := range s.board {
		if v.Letter != "" || v.State == CellShowing {
			s.paintLocked(i, "", CellNormal)
		}
	}
	s.out.Hint(s.drawHintLocked())
	s.out.Cue(CueReady)
	s.pushStatusLocked()
}

func (s *Session) drawHintLocked() string {
	r := s.round
	if len(r.words) > 1 {
		return fmt.Sprintf("Connect word %d: %s", r.drawing+1, r.words[r.drawing].Text)
	}
	return "Connect the letters along the path you remember"
}
