package sim

import "math"

// GridEntry is an agent's position and state as of the start of the step.
// Index is the agent's position in the population.
type GridEntry struct {
	Index int
	X, Y  float64
	State State
}

// Grid buckets agents into square cells for bounded-radius neighbor queries.
// It is rebuilt from scratch every step.
type Grid struct {
	cellSize float64
	cols     int
	rows     int
	cells    [][]GridEntry
}

// NewGrid creates a grid covering width x height with cells of cellSize.
func NewGrid(width, height, cellSize float64) *Grid {
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return &Grid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		cells:    make([][]GridEntry, cols*rows),
	}
}

// CellSize returns the edge length of a cell.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// Clear empties every cell, keeping allocated capacity.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// cell maps a position to its column and row, clamping out-of-range
// positions to the nearest edge cell.
func (g *Grid) cell(x, y float64) (int, int) {
	cx := int(math.Floor(x / g.cellSize))
	cy := int(math.Floor(y / g.cellSize))
	if cx < 0 || math.IsNaN(x) {
		cx = 0
	} else if cx >= g.cols {
		cx = g.cols - 1
	}
	if cy < 0 || math.IsNaN(y) {
		cy = 0
	} else if cy >= g.rows {
		cy = g.rows - 1
	}
	return cx, cy
}

func (g *Grid) insert(e GridEntry) {
	cx, cy := g.cell(e.X, e.Y)
	idx := cy*g.cols + cx
	g.cells[idx] = append(g.cells[idx], e)
}

// Rebuild clears the grid and inserts a snapshot of every agent in
// population order.
func (g *Grid) Rebuild(agents []*Agent) {
	g.Clear()
	for i, a := range agents {
		g.insert(GridEntry{Index: i, X: a.X, Y: a.Y, State: a.State})
	}
}

// Neighbors appends every entry in the 3x3 block of cells around (x, y) to buf.
// The result is a superset of the entries within one cell size of (x, y);
// callers filter by exact distance.
func (g *Grid) Neighbors(x, y float64, buf []GridEntry) []GridEntry {
	cx, cy := g.cell(x, y)
	for dx := -1; dx <= 1; dx++ {
		i := cx + dx
		if i < 0 || i >= g.cols {
			continue
		}
		for dy := -1; dy <= 1; dy++ {
			j := cy + dy
			if j < 0 || j >= g.rows {
				continue
			}
			buf = append(buf, g.cells[j*g.cols+i]...)
		}
	}
	return buf
}
