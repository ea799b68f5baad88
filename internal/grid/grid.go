// internal/grid/grid.go
//
// Rectangular play surface for the line game.
// Cells are addressed by a single index row*cols+col; the mapping to
// (row, col) is bijective for every index in [0, rows*cols).

package grid

// Default dimensions (7 rows so the board fits a phone screen).
const (
	DefaultRows = 7
	DefaultCols = 6
)

// Grid is a fixed rows × cols matrix of cells.
type Grid struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// New returns a grid, falling back to the defaults for non-positive sizes.
func New(rows, cols int) Grid {
	if rows <= 0 {
		rows = DefaultRows
	}
	if cols <= 0 {
		cols = DefaultCols
	}
	return Grid{Rows: rows, Cols: cols}
}

// Size is the number of cells.
func (g Grid) Size() int { return g.Rows * g.Cols }

// Contains reports whether i is a valid cell index.
func (g Grid) Contains(i int) bool { return i >= 0 && i < g.Size() }

// Index maps (row, col) to a cell index.
func (g Grid) Index(row, col int) int { return row*g.Cols + col }

// RowCol maps a cell index back to (row, col).
func (g Grid) RowCol(i int) (row, col int) { return i / g.Cols, i % g.Cols }

// Neighbors returns the 4-directional neighbors of i in up, down, left,
// right order.
func (g Grid) Neighbors(i int) []int {
	row, col := g.RowCol(i)
	out := make([]int, 0, 4)
	if row > 0 {
		out = append(out, g.Index(row-1, col))
	}
	if row < g.Rows-1 {
		out = append(out, g.Index(row+1, col))
	}
	if col > 0 {
		out = append(out, g.Index(row, col-1))
	}
	if col < g.Cols-1 {
		out = append(out, g.Index(row, col+1))
	}
	return out
}

// Adjacent reports whether a and b share an edge.
func (g Grid) Adjacent(a, b int) bool {
	if !g.Contains(a) || !g.Contains(b) {
		return false
	}
	ar, ac := g.RowCol(a)
	br, bc := g.RowCol(b)
	dr, dc := ar-br, ac-bc
	return (dr == 0 && (dc == 1 || dc == -1)) || (dc == 0 && (dr == 1 || dr == -1))
}
