// internal/grid/path.go
//
// Random letter paths.
// A path is a self-avoiding 4-connected walk; the paths of one round never
// share a cell. Generation retries a word a bounded number of times, then
// restarts the whole round, and gives up with ErrNoFit after a bounded number
// of restarts.

package grid

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

const (
	// DefaultWordAttempts is how often one word is retried before the round
	// generation starts over.
	DefaultWordAttempts = 100
	// DefaultRestarts caps full restarts of a round's generation.
	DefaultRestarts = 50
)

// ErrNoFit is returned when the requested words cannot be placed.
var ErrNoFit = errors.New("grid: words do not fit")

// Path is an ordered sequence of cell indices, one per letter.
type Path []int

// Contains reports whether the path visits i.
func (p Path) Contains(i int) bool {
	for _, x := range p {
		if x == i {
			return true
		}
	}
	return false
}

// Validate checks that p lies on g, never repeats a cell and only steps
// between adjacent cells.
func (g Grid) Validate(p Path) error {
	seen := make(map[int]bool, len(p))
	for i, c := range p {
		if !g.Contains(c) {
			return fmt.Errorf("cell %d out of range", c)
		}
		if seen[c] {
			return fmt.Errorf("cell %d repeated", c)
		}
		seen[c] = true
		if i > 0 && !g.Adjacent(p[i-1], c) {
			return fmt.Errorf("cells %d and %d are not adjacent", p[i-1], c)
		}
	}
	return nil
}

// Generator places random paths on a grid.
type Generator struct {
	Grid         Grid
	WordAttempts int
	Restarts     int
	rng          *rand.Rand
}

// NewGenerator returns a generator drawing from rng.
func NewGenerator(g Grid, rng *rand.Rand) *Generator {
	return &Generator{
		Grid:         g,
		WordAttempts: DefaultWordAttempts,
		Restarts:     DefaultRestarts,
		rng:          rng,
	}
}

// Walk tries once to place a path of the given length avoiding occupied.
// It reports false when no free start exists or the walk gets stuck.
func (gen *Generator) Walk(length int, occupied map[int]bool) (Path, bool) {
	if length <= 0 {
		return nil, false
	}
	var starts []int
	for i := 0; i < gen.Grid.Size(); i++ {
		if !occupied[i] {
			starts = append(starts, i)
		}
	}
	if len(starts) == 0 {
		return nil, false
	}

	path := Path{starts[gen.rng.IntN(len(starts))]}
	used := map[int]bool{path[0]: true}
	for len(path) < length {
		var next []int
		for _, n := range gen.Grid.Neighbors(path[len(path)-1]) {
			if !occupied[n] && !used[n] {
				next = append(next, n)
			}
		}
		if len(next) == 0 {
			return nil, false
		}
		c := next[gen.rng.IntN(len(next))]
		path = append(path, c)
		used[c] = true
	}
	return path, true
}

// Place generates one path per length, pairwise disjoint.
func (gen *Generator) Place(lengths []int) ([]Path, error) {
	total := 0
	for _, l := range lengths {
		if l <= 0 {
			return nil, fmt.Errorf("%w: empty word", ErrNoFit)
		}
		total += l
	}
	if total > gen.Grid.Size() {
		return nil, fmt.Errorf("%w: %d letters on %d cells", ErrNoFit, total, gen.Grid.Size())
	}

	for restart := 0; restart <= gen.Restarts; restart++ {
		if paths, ok := gen.placeOnce(lengths); ok {
			return paths, nil
		}
	}
	return nil, fmt.Errorf("%w: gave up after %d restarts", ErrNoFit, gen.Restarts)
}

// placeOnce runs one pass over all words against a fresh occupied set.
func (gen *Generator) placeOnce(lengths []int) ([]Path, bool) {
	occupied := make(map[int]bool)
	paths := make([]Path, 0, len(lengths))
	for _, l := range lengths {
		var p Path
		ok := false
		for attempt := 0; attempt < gen.WordAttempts && !ok; attempt++ {
			p, ok = gen.Walk(l, occupied)
		}
		if !ok {
			return nil, false
		}
		for _, c := range p {
			occupied[c] = true
		}
		paths = append(paths, p)
	}
	return paths, true
}
