package cluster

import "github.com/talgya/defector-percolation/internal/world"

// DefaultTolerance is how close to an edge a point must be to touch it.
const DefaultTolerance = 0.1

// Boundary labels the domain edge a point touches.
type Boundary uint8

const (
	BoundaryNone Boundary = iota
	BoundaryLeft
	BoundaryRight
	BoundaryBottom
	BoundaryTop
)

func (b Boundary) String() string {
	switch b {
	case BoundaryLeft:
		return "left"
	case BoundaryRight:
		return "right"
	case BoundaryBottom:
		return "bottom"
	case BoundaryTop:
		return "top"
	default:
		return "none"
	}
}

// Classify returns the first edge p touches, testing left, right, bottom,
// top in that order. A corner point gets exactly one label.
func Classify(p world.Position, d world.Domain, tau float64) Boundary {
	switch {
	case p.X <= tau:
		return BoundaryLeft
	case p.X >= d.Width-tau:
		return BoundaryRight
	case p.Y <= tau:
		return BoundaryBottom
	case p.Y >= d.Height-tau:
		return BoundaryTop
	default:
		return BoundaryNone
	}
}
