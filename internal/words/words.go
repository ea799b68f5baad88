// internal/words/words.go
//
// Grade-level word database for the games.
//
// Responsibilities:
//   - Load the grade → words table from a JSON file (WORDS_FILE) or fall back
//     to the embedded default in assets/words.json.
//   - Normalize entries: word text is trimmed and uppercased; entries whose
//     text is empty or not purely A–Z are dropped.
//   - Serve ForGrade lookups with a stable order (sampling is the caller's job).
//
// File format:
//   { "1": [ {"word": "cat", "translation": "猫", "example": "..."} ], "2": [...] }
//
// Initialization is run once (sync.Once); Default returns the loaded table.

package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/linewords/assets"
)

// Word is one vocabulary entry.
type Word struct {
	Text        string `json:"word"`
	Translation string `json:"translation"`
	Example     string `json:"example,omitempty"`
}

// Letters splits the word into its letters, one per path cell.
func (w Word) Letters() []string {
	out := make([]string, 0, len(w.Text))
	for _, r := range w.Text {
		out = append(out, string(r))
	}
	return out
}

// Len is the number of letters.
func (w Word) Len() int { return len([]rune(w.Text)) }

// DB maps grade levels to their words.
type DB struct {
	grades map[int][]Word
}

var (
	initOnce   sync.Once
	defaultDB  *DB
	initialErr error
)

// Init loads the word table exactly once, from path if set, otherwise from
// the embedded default.
func Init(path string) error {
	initOnce.Do(func() {
		var r io.Reader
		if path != "" {
			f, err := os.Open(path)
			if err != nil {
				initialErr = err
				return
			}
			defer f.Close()
			r = f
		} else {
			b, err := assets.WordsJSON()
			if err != nil {
				initialErr = err
				return
			}
			r = strings.NewReader(string(b))
		}
		defaultDB, initialErr = Parse(r)
	})
	return initialErr
}

// Default returns the table loaded by Init (nil before a successful Init).
func Default() *DB { return defaultDB }

// Parse reads a grade → words JSON table.
func Parse(r io.Reader) (*DB, error) {
	var raw map[string][]Word
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("words: decode: %w", err)
	}
	db := &DB{grades: make(map[int][]Word, len(raw))}
	for key, list := range raw {
		grade, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			return nil, fmt.Errorf("words: grade %q: %w", key, err)
		}
		for _, w := range list {
			w.Text = strings.ToUpper(strings.TrimSpace(w.Text))
			w.Translation = strings.TrimSpace(w.Translation)
			w.Example = strings.TrimSpace(w.Example)
			if w.Text == "" || !isAlpha(w.Text) {
				continue
			}
			db.grades[grade] = append(db.grades[grade], w)
		}
	}
	if len(db.grades) == 0 {
		return nil, errors.New("words: no grades loaded")
	}
	return db, nil
}

// ForGrade returns a copy of the words for grade. Unknown grades fall back to
// the lowest grade in the table.
func (db *DB) ForGrade(grade int) []Word {
	list, ok := db.grades[grade]
	if !ok {
		grades := db.Grades()
		if len(grades) == 0 {
			return nil
		}
		list = db.grades[grades[0]]
	}
	return append([]Word(nil), list...)
}

// Grades lists the available grades in ascending order.
func (db *DB) Grades() []int {
	out := make([]int, 0, len(db.grades))
	for g := range db.grades {
		out = append(out, g)
	}
	sort.Ints(out)
	return out
}

// Stats returns the number of words per grade.
func (db *DB) Stats() map[int]int {
	out := make(map[int]int, len(db.grades))
	for g, list := range db.grades {
		out[g] = len(list)
	}
	return out
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
