package game

import (
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/robalobadob/linewords/internal/clock"
	"github.com/robalobadob/linewords/internal/words"
)

// listSource serves the same words for every grade.
type listSource []words.Word

func (l listSource) ForGrade(int) []words.Word { return append([]words.Word(nil), l...) }

func word(text string) words.Word {
	return words.Word{Text: text, Translation: "t-" + text, Example: "An example with " + text + "."}
}

type event struct {
	kind      string
	index     int
	from, to  int
	letter    string
	state     CellState
	completed bool
	text      string
	prompt    Prompt
	cue       Cue
}

// recorder is a Presenter that keeps every call.
type recorder struct {
	mu      sync.Mutex
	events  []event
	status  Status
	cards   [][]words.Word
	summary *Summary
}

func (r *recorder) add(e event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) Cell(i int, letter string, st CellState) {
	r.add(event{kind: "cell", index: i, letter: letter, state: st})
}
func (r *recorder) Line(from, to int, completed bool) {
	r.add(event{kind: "line", from: from, to: to, completed: completed})
}
func (r *recorder) ClearLines(keep bool) { r.add(event{kind: "clear", completed: keep}) }
func (r *recorder) Status(st Status) {
	r.mu.Lock()
	r.status = st
	r.mu.Unlock()
}
func (r *recorder) Hint(text string) { r.add(event{kind: "hint", text: text}) }
func (r *recorder) Prompt(p Prompt) { r.add(event{kind: "prompt", prompt: p}) }
func (r *recorder) Cue(c Cue) { r.add(event{kind: "cue", cue: c}) }
func (r *recorder) Speak(text string) { r.add(event{kind: "speak", text: text}) }
func (r *recorder) LearningCard(ws []words.Word) {
	r.mu.Lock()
	r.cards = append(r.cards, ws)
	r.mu.Unlock()
}
func (r *recorder) GameOver(sum Summary) {
	r.mu.Lock()
	r.summary = &sum
	r.mu.Unlock()
}

// mark returns the current event count, for slicing later events.
func (r *recorder) mark() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *recorder) since(n int) []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events[n:]...)
}

func (r *recorder) hasPrompt(p Prompt) bool {
	for _, e := range r.since(0) {
		if e.kind == "prompt" && e.prompt == p {
			return true
		}
	}
	return false
}

type fixture struct {
	s   *Session
	rec *recorder
	clk *clock.Manual
}

func newFixture(t *testing.T, d Difficulty, opts Options, ws ...words.Word) *fixture {
	t.Helper()
	rec := &recorder{}
	clk := clock.NewManual(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	opts.Difficulty = d
	opts.Clock = clk
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(11, 42))
	}
	s, err := New(listSource(ws), rec, opts)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return &fixture{s: s, rec: rec, clk: clk}
}

// toDraw runs the observe animation to the end.
func (f *fixture) toDraw(t *testing.T) {
	t.Helper()
	f.clk.Advance(30 * time.Second)
	if p := f.s.Phase(); p != PhaseDraw {
		t.Fatalf("expected draw phase after observing, got %s", p)
	}
}

// drawWord feeds the exact path of the word being drawn.
func (f *fixture) drawWord(t *testing.T) Outcome {
	t.Helper()
	f.s.mu.Lock()
	path := append([]int(nil), f.s.round.paths[f.s.round.drawing]...)
	f.s.mu.Unlock()
	var last Outcome
	for _, i := range path {
		out, err := f.s.Select(i)
		if err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
		last = out
	}
	return last
}

// drawRound draws every word of the round and waits for the result phase.
func (f *fixture) drawRound(t *testing.T) {
	t.Helper()
	for {
		switch out := f.drawWord(t); out {
		case WordDone:
			f.clk.Advance(NextWordDelay)
		case RoundDone:
			f.clk.Advance(ResultDelay)
			if p := f.s.Phase(); p != PhaseResult {
				t.Fatalf("expected result phase, got %s", p)
			}
			return
		default:
			t.Fatalf("unexpected outcome %s while drawing", out)
		}
	}
}

// wrongCell returns a cell that is not the next expected one.
func (f *fixture) wrongCell() int {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	r := f.s.round
	expect := r.paths[r.drawing][len(r.user[r.drawing])]
	for i := 0; i < f.s.grid.Size(); i++ {
		if i != expect && !r.user[r.drawing].Contains(i) {
			return i
		}
	}
	return -1
}
