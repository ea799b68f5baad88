package game

import (
	"errors"
	"testing"
	"time"
)

func TestSettingsTable(t *testing.T) {
	cases := []struct {
		d        Difficulty
		perRound int
		attempts int
		speed    time.Duration
		interval time.Duration
	}{
		{Easy, 1, Unlimited, 1000 * time.Millisecond, 300 * time.Millisecond},
		{Medium, 2, 3, 800 * time.Millisecond, 200 * time.Millisecond},
		{Hard, 3, 2, 600 * time.Millisecond, 100 * time.Millisecond},
	}
	for _, c := range cases {
		s := SettingsFor(c.d)
		if s.WordsPerRound != c.perRound || s.MaxAttempts != c.attempts ||
			s.ObserveSpeed != c.speed || s.ObserveInterval != c.interval {
			t.Fatalf("%s: unexpected settings %+v", c.d, s)
		}
	}
	if SettingsFor(Easy).exhausted(1000) {
		t.Fatal("easy must never run out of attempts")
	}
	if !SettingsFor(Hard).exhausted(2) || SettingsFor(Hard).exhausted(1) {
		t.Fatal("hard allows exactly two mistakes")
	}
}

func TestParseDifficulty(t *testing.T) {
	for in, want := range map[string]Difficulty{"": Medium, "EASY": Easy, " hard ": Hard, "medium": Medium} {
		got, err := ParseDifficulty(in)
		if err != nil || got != want {
			t.Fatalf("ParseDifficulty(%q) = %s, %v", in, got, err)
		}
	}
	if _, err := ParseDifficulty("insane"); err == nil {
		t.Fatal("expected error for unknown difficulty")
	}
}

func TestPickWordsPrefersLengthBucket(t *testing.T) {
	f := newFixture(t, Easy, Options{TotalWords: 2},
		word("CAT"), word("ELEPHANT"), word("DOG"), word("LIBRARY"), word("SUN"))
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if len(f.s.list) != 2 {
		t.Fatalf("expected 2 words, got %d", len(f.s.list))
	}
	for _, w := range f.s.list {
		if w.Len() > 4 {
			t.Fatalf("easy game picked long word %s", w.Text)
		}
	}
}

func TestPickWordsFallsBackToAllWords(t *testing.T) {
	f := newFixture(t, Hard, Options{TotalWords: 3}, word("CAT"), word("DOG"), word("APPLE"))
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if len(f.s.list) != 3 {
		t.Fatalf("expected the unfiltered list, got %d words", len(f.s.list))
	}
}

// A single perfect word scores 100 + 0 + 50.
func TestPerfectWordScores150(t *testing.T) {
	f := newFixture(t, Easy, Options{Rows: 7, Cols: 6}, word("CAT"))
	f.toDraw(t)

	if got := f.drawWord(t); got != RoundDone {
		t.Fatalf("expected round_done, got %s", got)
	}
	if f.s.Attempts() != 0 {
		t.Fatalf("expected 0 attempts, got %d", f.s.Attempts())
	}
	f.clk.Advance(ResultDelay)
	if f.s.Phase() != PhaseResult {
		t.Fatalf("expected result phase, got %s", f.s.Phase())
	}
	if f.s.Score() != 150 {
		t.Fatalf("expected score 150, got %d", f.s.Score())
	}
	if len(f.rec.cards) != 1 || f.rec.cards[0][0].Text != "CAT" {
		t.Fatalf("expected a learning card for CAT, got %+v", f.rec.cards)
	}
	if !f.rec.hasPrompt(PromptContinue) {
		t.Fatal("result must wait for an explicit continue")
	}

	// Result never advances on its own.
	f.clk.Advance(time.Minute)
	if f.s.Phase() != PhaseResult {
		t.Fatalf("result phase left without user action: %s", f.s.Phase())
	}

	if err := f.s.Continue(); err != nil {
		t.Fatalf("continue: %v", err)
	}
	if f.s.Phase() != PhaseOver {
		t.Fatalf("expected game over, got %s", f.s.Phase())
	}
	if f.rec.summary == nil || f.rec.summary.Accuracy != 100 || f.rec.summary.WordsCompleted != 1 {
		t.Fatalf("unexpected summary %+v", f.rec.summary)
	}
}

func TestComboBonus(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"), word("DOG"))
	f.toDraw(t)
	f.drawRound(t)
	if err := f.s.Continue(); err != nil {
		t.Fatal(err)
	}
	f.toDraw(t)
	f.drawRound(t)
	// 150 + (100 + 10 + 50)
	if f.s.Score() != 310 {
		t.Fatalf("expected 310, got %d", f.s.Score())
	}
}

func TestWrongStartKeepsPathEmpty(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"))
	f.toDraw(t)

	wrong := f.wrongCell()
	out, err := f.s.Select(wrong)
	if err != nil || out != Mismatch {
		t.Fatalf("expected mismatch, got %s %v", out, err)
	}
	if f.s.Attempts() != 1 {
		t.Fatalf("expected attempts 1, got %d", f.s.Attempts())
	}
	if len(f.s.UserPath()) != 0 {
		t.Fatalf("user path should stay empty, got %v", f.s.UserPath())
	}

	start := f.s.Paths()[0][0]
	out, err = f.s.Select(start)
	if err != nil || out != Accepted {
		t.Fatalf("expected accepted, got %s %v", out, err)
	}
	if len(f.s.UserPath()) != 1 {
		t.Fatalf("expected path length 1, got %v", f.s.UserPath())
	}
}

func TestMismatchResetsThenReplayCompletes(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("BOOK"))
	f.toDraw(t)
	path := f.s.Paths()[0]

	for _, i := range path[:2] {
		if out, _ := f.s.Select(i); out != Accepted {
			t.Fatalf("expected accepted, got %s", out)
		}
	}
	if out, _ := f.s.Select(f.wrongCell()); out != Mismatch {
		t.Fatalf("expected mismatch, got %s", out)
	}
	if len(f.s.UserPath()) != 0 {
		t.Fatalf("mismatch must clear the user path, got %v", f.s.UserPath())
	}
	for k, c := range path {
		out, _ := f.s.Select(c)
		if k < len(path)-1 && out != Accepted {
			t.Fatalf("replay step %d: %s", k, out)
		}
		if k == len(path)-1 && out != RoundDone {
			t.Fatalf("replay should complete, got %s", out)
		}
	}
	f.clk.Advance(ResultDelay)
	// One mistake costs the perfect bonus.
	if f.s.Score() != 100 {
		t.Fatalf("expected 100, got %d", f.s.Score())
	}
}

func TestHardRevealAndSkip(t *testing.T) {
	f := newFixture(t, Hard, Options{TotalWords: 6},
		word("APPLE"), word("TIGER"), word("PANDA"), word("GREEN"), word("HAPPY"), word("MUSIC"))
	f.toDraw(t)

	if out, _ := f.s.Select(f.wrongCell()); out != Mismatch {
		t.Fatalf("first wrong: %s", out)
	}
	if out, _ := f.s.Select(f.wrongCell()); out != Revealed {
		t.Fatalf("second wrong should reveal, got %s", out)
	}
	if f.s.Phase() != PhaseReveal {
		t.Fatalf("expected reveal phase, got %s", f.s.Phase())
	}
	snap := f.s.Snapshot()
	for k, i := range f.s.Paths()[0] {
		if snap.Board[i].State != CellCorrect || snap.Board[i].Letter != snap.Words[0].Letters()[k] {
			t.Fatalf("cell %d not revealed: %+v", i, snap.Board[i])
		}
	}
	if out, _ := f.s.Select(f.s.Paths()[0][0]); out != Ignored {
		t.Fatalf("input during reveal must be ignored, got %s", out)
	}

	if f.rec.hasPrompt(PromptRetrySkip) {
		t.Fatal("retry/skip offered too early")
	}
	f.clk.Advance(RevealDelay)
	if !f.rec.hasPrompt(PromptRetrySkip) {
		t.Fatal("retry/skip not offered")
	}

	if err := f.s.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	f.s.mu.Lock()
	cursor, completed, combo := f.s.cursor, f.s.completed, f.s.combo
	f.s.mu.Unlock()
	if cursor != 3 {
		t.Fatalf("skip should advance the cursor by 3, got %d", cursor)
	}
	if completed != 0 || combo != 0 {
		t.Fatalf("skipped words must not count: completed=%d combo=%d", completed, combo)
	}
	if f.s.Phase() != PhaseObserve {
		t.Fatalf("expected next round to observe, got %s", f.s.Phase())
	}
	if got := f.s.Snapshot().Status.Progress; got != "1/6" {
		t.Fatalf("unexpected progress %q", got)
	}
}

func TestRetryAfterRevealForfeitsBonus(t *testing.T) {
	f := newFixture(t, Hard, Options{TotalWords: 3}, word("APPLE"), word("TIGER"), word("PANDA"))
	f.toDraw(t)
	f.s.Select(f.wrongCell())
	f.s.Select(f.wrongCell())
	if f.s.Phase() != PhaseReveal {
		t.Fatalf("expected reveal, got %s", f.s.Phase())
	}
	if err := f.s.Retry(); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if f.s.Phase() != PhaseDraw || len(f.s.UserPath()) != 0 {
		t.Fatalf("retry should return to a clean draw: phase=%s path=%v", f.s.Phase(), f.s.UserPath())
	}
	if f.s.Attempts() != 2 {
		t.Fatalf("retry keeps the attempt count, got %d", f.s.Attempts())
	}
	for _, i := range f.s.Paths()[0] {
		if v := f.s.Snapshot().Board[i]; v.State != CellNormal || v.Letter != "" {
			t.Fatalf("revealed cell %d not cleared: %+v", i, v)
		}
	}
	f.drawRound(t)
	if f.s.Score() != 100 {
		t.Fatalf("expected 100 without bonus, got %d", f.s.Score())
	}
}

func TestMissAfterRetryRevealsAgain(t *testing.T) {
	f := newFixture(t, Medium, Options{TotalWords: 2}, word("BOOK"), word("FISH"))
	f.toDraw(t)
	for k := 0; k < 3; k++ {
		f.s.Select(f.wrongCell())
	}
	if f.s.Phase() != PhaseReveal {
		t.Fatalf("expected reveal after three misses, got %s", f.s.Phase())
	}
	f.s.Retry()
	if out, _ := f.s.Select(f.wrongCell()); out != Revealed {
		t.Fatalf("one miss after retry should reveal again, got %s", out)
	}
}

func TestRevealPromptBelongsToLatestReveal(t *testing.T) {
	f := newFixture(t, Hard, Options{TotalWords: 3}, word("APPLE"), word("TIGER"), word("PANDA"))
	f.toDraw(t)
	f.s.Select(f.wrongCell())
	f.s.Select(f.wrongCell())

	f.clk.Advance(RevealDelay / 2)
	f.s.Retry()
	if out, _ := f.s.Select(f.wrongCell()); out != Revealed {
		t.Fatalf("expected a second reveal, got %s", out)
	}

	// The first reveal's delay ends here; its prompt must stay silent.
	f.clk.Advance(RevealDelay / 2)
	if f.rec.hasPrompt(PromptRetrySkip) {
		t.Fatal("retry/skip offered before the second reveal's delay")
	}
	f.clk.Advance(RevealDelay / 2)
	if !f.rec.hasPrompt(PromptRetrySkip) {
		t.Fatal("retry/skip not offered after the second reveal")
	}
}

func TestActionsRejectedInWrongPhase(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"))
	for name, fn := range map[string]func() error{
		"retry": f.s.Retry, "skip": f.s.Skip, "continue": f.s.Continue,
	} {
		if err := fn(); !errors.Is(err, ErrPhase) {
			t.Fatalf("%s during observe: expected ErrPhase, got %v", name, err)
		}
	}
}

func TestMultiWordRound(t *testing.T) {
	f := newFixture(t, Medium, Options{TotalWords: 2}, word("BOOK"), word("FISH"))
	f.toDraw(t)
	paths := f.s.Paths()
	if len(paths) != 2 {
		t.Fatalf("medium rounds hold two words, got %d", len(paths))
	}

	if out := f.drawWord(t); out != WordDone {
		t.Fatalf("expected word_done, got %s", out)
	}
	// Input is frozen until the next word is prompted.
	if out, _ := f.s.Select(paths[1][0]); out != Ignored {
		t.Fatalf("input during transition should be ignored, got %s", out)
	}
	mark := f.rec.mark()
	f.clk.Advance(NextWordDelay)

	snap := f.s.Snapshot()
	if snap.DrawingWord != 1 {
		t.Fatalf("expected to be drawing word 2, got %d", snap.DrawingWord)
	}
	for _, i := range paths[0] {
		if snap.Board[i].State != CellCompleted || snap.Board[i].Letter == "" {
			t.Fatalf("completed word cell %d should stay dimmed with its letter: %+v", i, snap.Board[i])
		}
	}
	completedLines := 0
	for _, e := range f.rec.since(mark) {
		if e.kind == "line" && e.completed {
			completedLines++
		}
	}
	if completedLines != len(paths[0])-1 {
		t.Fatalf("expected %d completed lines, got %d", len(paths[0])-1, completedLines)
	}

	if out := f.drawWord(t); out != RoundDone {
		t.Fatalf("expected round_done, got %s", out)
	}
	f.clk.Advance(ResultDelay)
	if f.s.Score() != 150 {
		t.Fatalf("expected 150, got %d", f.s.Score())
	}
	f.s.mu.Lock()
	completed := f.s.completed
	f.s.mu.Unlock()
	if completed != 2 {
		t.Fatalf("both words should count, got %d", completed)
	}
}

func TestErrorFlashRestoresCell(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"))
	f.toDraw(t)
	wrong := f.wrongCell()
	mark := f.rec.mark()
	f.s.Select(wrong)

	var sawError bool
	for _, e := range f.rec.since(mark) {
		if e.kind == "cell" && e.index == wrong && e.state == CellError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("wrong cell was not flashed")
	}
	if st := f.rec.status; st.Errors != 1 {
		t.Fatalf("status should count the error, got %+v", st)
	}

	mark = f.rec.mark()
	f.clk.Advance(ErrorFlash)
	var restored bool
	for _, e := range f.rec.since(mark) {
		if e.kind == "cell" && e.index == wrong && e.state == CellNormal {
			restored = true
		}
	}
	if !restored {
		t.Fatal("error flash was not cleared")
	}
}

func TestShrinksRoundWhenWordsDoNotFit(t *testing.T) {
	f := newFixture(t, Medium, Options{Rows: 2, Cols: 2, TotalWords: 2}, word("CAT"), word("DOG"))
	if n := len(f.s.Snapshot().Words); n != 1 {
		t.Fatalf("two 3-letter words cannot share 4 cells; expected 1 word, got %d", n)
	}
	f.toDraw(t)
	f.drawRound(t)
	if err := f.s.Continue(); err != nil {
		t.Fatal(err)
	}
	if n := len(f.s.Snapshot().Words); n != 1 || f.s.Phase() != PhaseObserve {
		t.Fatalf("the second word should get its own round, got %d words in %s", n, f.s.Phase())
	}
}

func TestSkipsWordsThatNeverFit(t *testing.T) {
	f := newFixture(t, Easy, Options{Rows: 2, Cols: 2, TotalWords: 2}, word("APPLE"), word("PLANE"))
	if f.s.Phase() != PhaseOver {
		t.Fatalf("expected immediate game over, got %s", f.s.Phase())
	}
	if f.rec.summary == nil || f.rec.summary.WordsCompleted != 0 || f.rec.summary.TotalWords != 2 {
		t.Fatalf("unexpected summary %+v", f.rec.summary)
	}
}

func TestNewWithoutWords(t *testing.T) {
	if _, err := New(listSource(nil), nil, Options{}); !errors.Is(err, ErrNoWords) {
		t.Fatalf("expected ErrNoWords, got %v", err)
	}
}

func TestTimerExcludesPauseAndStopsAtGameOver(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"))
	f.clk.Advance(2 * time.Second)
	if err := f.s.Pause(); err != nil {
		t.Fatal(err)
	}
	f.clk.Advance(time.Hour)
	if err := f.s.Resume(); err != nil {
		t.Fatal(err)
	}
	f.clk.Advance(3 * time.Second)
	if got := f.s.Elapsed(); got != 5*time.Second {
		t.Fatalf("expected 5s elapsed, got %v", got)
	}
	if f.rec.status.Timer != "00:05" {
		t.Fatalf("expected timer 00:05, got %q", f.rec.status.Timer)
	}

	f.toDraw(t)
	f.drawRound(t)
	f.s.Continue()
	over := f.s.Elapsed()
	f.clk.Advance(time.Minute)
	if f.s.Elapsed() != over {
		t.Fatal("timer kept running after game over")
	}
	if got := time.Duration(f.rec.summary.ElapsedMs) * time.Millisecond; got != over {
		t.Fatalf("summary elapsed %v, want %v", got, over)
	}
}

func TestGameOverWhilePausedKeepsTimerStopped(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"))
	f.toDraw(t)
	f.drawRound(t)
	if err := f.s.Pause(); err != nil {
		t.Fatal(err)
	}
	f.clk.Advance(10 * time.Second)
	if err := f.s.Continue(); err != nil {
		t.Fatal(err)
	}
	if f.s.Phase() != PhaseOver {
		t.Fatalf("expected game over, got %s", f.s.Phase())
	}
	over := f.s.Elapsed()
	f.clk.Advance(10 * time.Second)

	if err := f.s.Resume(); err != nil {
		t.Fatal(err)
	}
	if f.s.Paused() {
		t.Fatal("resume should clear the pause flag")
	}
	f.clk.Advance(5 * time.Second)
	if got := f.s.Elapsed(); got != over {
		t.Fatalf("elapsed changed after game over: %v -> %v", over, got)
	}
	if n := f.clk.Pending(); n != 0 {
		t.Fatalf("timer ticker revived after game over: %d callbacks pending", n)
	}
	if got := time.Duration(f.rec.summary.ElapsedMs) * time.Millisecond; got != over {
		t.Fatalf("summary elapsed %v, want %v", got, over)
	}
}

func TestClosedSessionRejectsInput(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"))
	f.toDraw(t)
	f.s.Close()
	if _, err := f.s.Select(0); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	mark := f.rec.mark()
	f.clk.Advance(time.Minute)
	if len(f.rec.since(mark)) != 0 {
		t.Fatal("closed session kept rendering")
	}
}

func TestWordInfo(t *testing.T) {
	f := newFixture(t, Easy, Options{}, word("CAT"))
	if got := f.rec.status.Word; got != "CAT · t-CAT" {
		t.Fatalf("unexpected single word info %q", got)
	}
	g := newFixture(t, Medium, Options{TotalWords: 2}, word("BOOK"), word("FISH"))
	got := g.rec.status.Word
	if got != "1. BOOK 2. FISH" && got != "1. FISH 2. BOOK" {
		t.Fatalf("unexpected multi word info %q", got)
	}
}
