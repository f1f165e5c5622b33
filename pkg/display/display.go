// Package display renders session identity and live readings onto a fixed
// character grid, the Go-side model of a non-clearing 4-row LCD.
package display

import "sync"

// Display is the minimal surface the presenter draws on: place text at a
// row/column of a fixed character grid. Writes outside the grid are clipped.
type Display interface {
	WriteAt(row, col int, text string)
}

// Grid is an in-memory character grid. It backs the panel widget and the
// tests, and mimics LCD semantics: cells keep their content until
// overwritten, there is no clear-on-draw.
type Grid struct {
	mu    sync.RWMutex
	rows  int
	cols  int
	cells [][]rune
}

// Ensure Grid implements Display.
var _ Display = (*Grid)(nil)

// NewGrid creates a rows x cols grid filled with spaces.
func NewGrid(rows, cols int) *Grid {
	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = make([]rune, cols)
		for j := range cells[i] {
			cells[i][j] = ' '
		}
	}
	return &Grid{rows: rows, cols: cols, cells: cells}
}

// WriteAt writes text starting at row/col, clipping at the grid edge.
func (g *Grid) WriteAt(row, col int, text string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if row < 0 || row >= g.rows || col >= g.cols {
		return
	}
	for i, r := range text {
		c := col + i
		if c < 0 {
			continue
		}
		if c >= g.cols {
			break
		}
		g.cells[row][c] = r
	}
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// Row returns the current content of one row.
func (g *Grid) Row(i int) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if i < 0 || i >= g.rows {
		return ""
	}
	return string(g.cells[i])
}

// String renders the whole grid, rows separated by newlines.
func (g *Grid) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]byte, 0, g.rows*(g.cols+1))
	for i, row := range g.cells {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, string(row)...)
	}
	return string(out)
}
