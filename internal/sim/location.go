package sim

// LocationKind distinguishes ordinary central locations from quarantine.
type LocationKind uint8

const (
	CentralLocation LocationKind = iota
	QuarantineLocation
)

// String returns "central" or "quarantine".
func (k LocationKind) String() string {
	if k == QuarantineLocation {
		return "quarantine"
	}
	return "central"
}

// Location is an axis-aligned square on the board. X and Y are the top-left
// corner.
type Location struct {
	X, Y float64
	Size float64
	Kind LocationKind
}

// Center returns the midpoint of the square.
func (l Location) Center() (float64, float64) {
	return l.X + l.Size/2, l.Y + l.Size/2
}

// Contains reports whether (x, y) lies inside the square, edges included.
func (l Location) Contains(x, y float64) bool {
	return x >= l.X && x <= l.X+l.Size && y >= l.Y && y <= l.Y+l.Size
}

// Bounds returns the left, right, top and bottom edges.
func (l Location) Bounds() (left, right, top, bottom float64) {
	return l.X, l.X + l.Size, l.Y, l.Y + l.Size
}

// LocationRef is a non-owning handle into the simulation's location table.
type LocationRef int

// NoLocation marks a free-roaming agent.
const NoLocation LocationRef = -1
