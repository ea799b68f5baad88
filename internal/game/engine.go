// internal/game/engine.go
//
// Round state machine for the line game.
// Responsibilities:
//   - Pick the game's word list for a grade (shuffled, length-bucketed).
//   - Run rounds: ready → observe → draw → result → next round | game over,
//     with reveal (attempts exhausted) offering retry or skip.
//   - Keep score, combo, error count and a pause-aware elapsed timer.
//
// Notes:
//   - Every exported method and every scheduled callback takes s.mu, so all
//     mutation is serialized per session.
//   - s.epoch identifies the live observe sequence and round; callbacks
//     capture it when scheduled and do nothing once it has moved on.
//   - Input handling lives in input.go, the observe sequence in observe.go.
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/linewords/internal/clock"
	"github.com/robalobadob/linewords/internal/grid"
	"github.com/robalobadob/linewords/internal/words"
)

var (
	ErrNoWords = errors.New("no words for grade")
	ErrBadCell = errors.New("cell out of range")
	ErrPhase   = errors.New("action not allowed in this phase")
	ErrClosed  = errors.New("session closed")
)

// Options configures a new session. Zero values pick the defaults.
type Options struct {
	ID         string
	Grade      int
	Difficulty Difficulty
	Rows, Cols int
	TotalWords int
	Clock      clock.Clock
	Rand       *rand.Rand
}

// round holds the per-round mutable state.
type round struct {
	words     []words.Word
	letters   [][]string
	paths     []grid.Path
	user      []grid.Path
	drawing   int  // index of the word being drawn
	attempts  int  // wrong selections this round
	assisted  bool // the path was revealed and retried
	reveals   int  // reveals shown this round
	advancing bool // a delayed transition is pending; input is ignored
}

// Session is one player's line game.
type Session struct {
	mu sync.Mutex

	id         string
	grade      int
	difficulty Difficulty
	settings   Settings
	grid       grid.Grid
	gen        *grid.Generator
	rng        *rand.Rand
	clock      clock.Clock
	out        Presenter
	source     WordSource
	target     int

	list    []words.Word
	cursor  int
	round   *round
	phase   Phase
	epoch   uint64
	observe *observeTask

	score, combo, errors, completed int

	startedAt time.Time
	endedAt   time.Time
	pausedAt  time.Time
	pausedFor time.Duration
	paused    bool
	timerGen  uint64
	closed    bool

	board    []CellView
	dragging bool
	lastDrag int
}

// New constructs a session in the ready phase. Call Start to begin.
func New(src WordSource, out Presenter, opts Options) (*Session, error) {
	if out == nil {
		out = Nop{}
	}
	if opts.Difficulty == "" {
		opts.Difficulty = Medium
	}
	if opts.Grade <= 0 {
		opts.Grade = 1
	}
	if opts.TotalWords <= 0 {
		opts.TotalWords = DefaultTotalWords
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.ID == "" {
		opts.ID = uuid.NewString()
	}
	if len(src.ForGrade(opts.Grade)) == 0 {
		return nil, fmt.Errorf("grade %d: %w", opts.Grade, ErrNoWords)
	}

	g := grid.New(opts.Rows, opts.Cols)
	s := &Session{
		id:         opts.ID,
		grade:      opts.Grade,
		difficulty: opts.Difficulty,
		settings:   SettingsFor(opts.Difficulty),
		grid:       g,
		gen:        grid.NewGenerator(g, opts.Rand),
		rng:        opts.Rand,
		clock:      opts.Clock,
		out:        out,
		source:     src,
		target:     opts.TotalWords,
		phase:      PhaseReady,
		board:      make([]CellView, g.Size()),
		lastDrag:   -1,
	}
	for i := range s.board {
		s.board[i] = CellView{State: CellNormal}
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Grid returns the board dimensions.
func (s *Session) Grid() grid.Grid { return s.grid }

// Start begins a new game: fresh word list, zeroed counters, timer started,
// first round observed.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.startLocked()
}

// Restart abandons the current game and starts over.
func (s *Session) Restart() error { return s.Start() }

func (s *Session) startLocked() error {
	all := s.source.ForGrade(s.grade)
	if len(all) == 0 {
		return fmt.Errorf("grade %d: %w", s.grade, ErrNoWords)
	}
	s.list = s.pickWords(all, s.target)
	s.cursor = 0
	s.score, s.combo, s.errors, s.completed = 0, 0, 0, 0
	s.paused = false
	s.pausedFor = 0
	s.startedAt = s.clock.Now()
	s.endedAt = time.Time{}
	s.round = nil
	s.dragging = false

	log.Info().Str("gameId", s.id).Int("grade", s.grade).
		Str("difficulty", string(s.difficulty)).Int("words", len(s.list)).Msg("line game started")

	s.startTimerLocked()
	s.nextRoundLocked()
	return nil
}

// pickWords shuffles the grade's words and keeps n of them, preferring the
// difficulty's length bucket when it holds enough words.
func (s *Session) pickWords(all []words.Word, n int) []words.Word {
	shuffled := append([]words.Word(nil), all...)
	s.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	var filtered []words.Word
	for _, w := range shuffled {
		if s.settings.fits(w) {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) < n {
		filtered = shuffled
	}
	if len(filtered) > n {
		filtered = filtered[:n]
	}
	return filtered
}

// nextRoundLocked starts the round at the cursor, or ends the game.
func (s *Session) nextRoundLocked() {
	for {
		if s.cursor >= len(s.list) {
			s.gameOverLocked()
			return
		}
		n := min(s.settings.WordsPerRound, len(s.list)-s.cursor)
		picked := s.list[s.cursor : s.cursor+n]

		var paths []grid.Path
		for n > 0 {
			lengths := make([]int, n)
			for i, w := range picked[:n] {
				lengths[i] = w.Len()
			}
			var err error
			if paths, err = s.gen.Place(lengths); err == nil {
				break
			}
			log.Warn().Err(err).Str("gameId", s.id).Int("words", n).Msg("path generation failed, shrinking round")
			n--
		}
		if n == 0 {
			log.Warn().Str("gameId", s.id).Str("word", picked[0].Text).Msg("word does not fit the grid, skipping")
			s.cursor++
			continue
		}

		r := &round{
			words: append([]words.Word(nil), picked[:n]...),
			paths: paths,
			user:  make([]grid.Path, n),
		}
		for _, w := range r.words {
			r.letters = append(r.letters, w.Letters())
		}
		s.round = r
		log.Debug().Str("gameId", s.id).Int("cursor", s.cursor).Int("words", n).Msg("round ready")
		s.beginObserveLocked()
		return
	}
}

// advanceLocked moves the cursor past the current round and starts the next.
func (s *Session) advanceLocked() {
	if s.round != nil {
		s.cursor += len(s.round.words)
	}
	s.nextRoundLocked()
}

// Continue leaves the result screen for the next round.
func (s *Session) Continue() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.phase != PhaseResult {
		return fmt.Errorf("continue in %s: %w", s.phase, ErrPhase)
	}
	s.advanceLocked()
	return nil
}

// Retry clears the revealed path and lets the player draw the word again.
// The attempt count stays at the cap, so the next miss reveals again.
func (s *Session) Retry() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.phase != PhaseReveal {
		return fmt.Errorf("retry in %s: %w", s.phase, ErrPhase)
	}
	r := s.round
	for _, i := range r.paths[r.drawing] {
		s.paintLocked(i, "", CellNormal)
	}
	s.out.ClearLines(true)
	r.user[r.drawing] = nil
	r.assisted = true
	s.phase = PhaseDraw
	s.out.Hint(s.drawHintLocked())
	s.pushStatusLocked()
	return nil
}

// Skip abandons the round's words; they do not count as completed.
func (s *Session) Skip() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.phase != PhaseReveal {
		return fmt.Errorf("skip in %s: %w", s.phase, ErrPhase)
	}
	s.combo = 0
	s.advanceLocked()
	return nil
}

// resultLocked scores the finished round and shows the learning card.
func (s *Session) resultLocked() {
	r := s.round
	r.advancing = false
	s.phase = PhaseResult

	bonus := 0
	if r.attempts == 0 && !r.assisted {
		bonus = 50
	}
	s.score += 100 + s.combo*10 + bonus
	s.combo++
	s.completed += len(r.words)

	s.out.Hint("Great job!")
	s.out.LearningCard(append([]words.Word(nil), r.words...))
	s.out.Prompt(PromptContinue)
	s.out.Cue(CueSuccess)
	s.pushStatusLocked()
}

// gameOverLocked stops the timer and hands the summary to the presenter.
func (s *Session) gameOverLocked() {
	s.phase = PhaseOver
	s.epoch++
	s.timerGen++
	s.endedAt = s.clock.Now()
	if s.paused {
		s.endedAt = s.pausedAt
	}
	sum := s.summaryLocked()
	log.Info().Str("gameId", s.id).Int("score", sum.Score).Int("completed", sum.WordsCompleted).
		Int("total", sum.TotalWords).Msg("line game over")
	s.pushStatusLocked()
	s.out.GameOver(sum)
}

func (s *Session) summaryLocked() Summary {
	acc := 0
	if n := len(s.list); n > 0 {
		acc = (s.completed*100 + n/2) / n
	}
	return Summary{
		Score:          s.score,
		WordsCompleted: s.completed,
		TotalWords:     len(s.list),
		Accuracy:       acc,
		Errors:         s.errors,
		ElapsedMs:      s.elapsedLocked().Milliseconds(),
	}
}

// ----------------------------- pause & timer -------------------------------

// Pause freezes the timer and holds the observe sequence at its current step.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.paused || s.phase == PhaseOver || s.phase == PhaseReady {
		return nil
	}
	s.paused = true
	s.pausedAt = s.clock.Now()
	s.timerGen++
	s.dragging = false
	s.pushStatusLocked()
	return nil
}

// Resume restarts the timer; the paused duration is not counted.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if !s.paused {
		return nil
	}
	if s.phase == PhaseOver {
		// The game ended while paused; the timer stays stopped at pausedAt.
		s.paused = false
		s.pushStatusLocked()
		return nil
	}
	s.pausedFor += s.clock.Now().Sub(s.pausedAt)
	s.paused = false
	s.startTimerLocked()
	return nil
}

// Paused reports whether the session is paused.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Elapsed is the play time excluding pauses.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	if s.startedAt.IsZero() {
		return 0
	}
	end := s.clock.Now()
	switch {
	case s.phase == PhaseOver:
		end = s.endedAt
	case s.paused:
		end = s.pausedAt
	}
	d := end.Sub(s.startedAt) - s.pausedFor
	if d < 0 {
		return 0
	}
	return d
}

// startTimerLocked pushes a status update now and every TimerTick until the
// timer generation changes (pause, game over, close, restart).
func (s *Session) startTimerLocked() {
	s.timerGen++
	gen := s.timerGen
	var tick func()
	tick = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.timerGen || s.closed {
			return
		}
		s.pushStatusLocked()
		s.clock.AfterFunc(TimerTick, tick)
	}
	s.pushStatusLocked()
	s.clock.AfterFunc(TimerTick, tick)
}

// Close invalidates every pending callback. The session is unusable after.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.epoch++
	s.timerGen++
	log.Debug().Str("gameId", s.id).Msg("line game closed")
}

// ------------------------------- rendering ---------------------------------

// paintLocked records and renders one cell.
func (s *Session) paintLocked(i int, letter string, st CellState) {
	s.board[i] = CellView{Letter: letter, State: st}
	s.out.Cell(i, letter, st)
}

// clearBoardLocked blanks every cell and removes all lines.
func (s *Session) clearBoardLocked() {
	for i, v := range s.board {
		if v.Letter != "" || v.State != CellNormal {
			s.paintLocked(i, "", CellNormal)
		}
	}
	s.out.ClearLines(false)
}

func (s *Session) pushStatusLocked() {
	s.out.Status(s.statusLocked())
}

func (s *Session) statusLocked() Status {
	cur := s.completed + 1
	if cur > len(s.list) {
		cur = len(s.list)
	}
	return Status{
		Phase:    s.phase,
		Score:    s.score,
		Combo:    s.combo,
		Progress: fmt.Sprintf("%d/%d", cur, len(s.list)),
		Word:     s.wordInfoLocked(),
		Errors:   s.errors,
		Timer:    formatTimer(s.elapsedLocked()),
		Paused:   s.paused,
	}
}

// wordInfoLocked is "CAT · 猫" for one word, "1. CAT 2. DOG" for several.
func (s *Session) wordInfoLocked() string {
	if s.round == nil || s.phase == PhaseOver {
		return ""
	}
	ws := s.round.words
	if len(ws) == 1 {
		return ws[0].Text + " · " + ws[0].Translation
	}
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = fmt.Sprintf("%d. %s", i+1, w.Text)
	}
	return strings.Join(parts, " ")
}

// ------------------------------- snapshot ----------------------------------

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:         s.id,
		Grade:      s.grade,
		Difficulty: s.difficulty,
		Rows:       s.grid.Rows,
		Cols:       s.grid.Cols,
		Phase:      s.phase,
		Status:     s.statusLocked(),
		Board:      append([]CellView(nil), s.board...),
		Epoch:      s.epoch,
	}
	if s.round != nil {
		snap.Words = append([]words.Word(nil), s.round.words...)
		snap.DrawingWord = s.round.drawing
		snap.Attempts = s.round.attempts
	}
	return snap
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Score returns the accumulated score.
func (s *Session) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.score
}
