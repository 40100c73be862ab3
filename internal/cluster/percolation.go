package cluster

import "github.com/talgya/defector-percolation/internal/world"

// Component is one connected group and its boundary verdicts.
type Component struct {
	Members         []world.Position `json:"members"`
	TouchesBoundary bool             `json:"touches_boundary"`
	HasHorizontal   bool             `json:"has_horizontal_percolation"` // Left and right both reached
	HasVertical     bool             `json:"has_vertical_percolation"`   // Top and bottom both reached
	Percolates      bool             `json:"percolates"`
}

// Size returns the member count.
func (c Component) Size() int {
	return len(c.Members)
}

// Result is the world-level percolation report.
type Result struct {
	Components            []Component `json:"components"`
	HasAny                bool        `json:"has_any_percolation"`
	LargestComponentSize  int         `json:"largest_component_size"`
	PercolatingSizes      []int       `json:"percolating_sizes"`
	BoundaryTouchingCount int         `json:"boundary_touching_count"`
}

// HasHorizontal reports whether any component spans left to right.
func (r Result) HasHorizontal() bool {
	for _, c := range r.Components {
		if c.HasHorizontal {
			return true
		}
	}
	return false
}

// HasVertical reports whether any component spans bottom to top.
func (r Result) HasVertical() bool {
	for _, c := range r.Components {
		if c.HasVertical {
			return true
		}
	}
	return false
}

// Classified builds the verdicts for one component.
func Classified(members []world.Position, d world.Domain, tau float64) Component {
	var seen [5]bool
	for _, m := range members {
		seen[Classify(m, d, tau)] = true
	}
	c := Component{
		Members:         members,
		TouchesBoundary: seen[BoundaryLeft] || seen[BoundaryRight] || seen[BoundaryBottom] || seen[BoundaryTop],
		HasHorizontal:   seen[BoundaryLeft] && seen[BoundaryRight],
		HasVertical:     seen[BoundaryTop] && seen[BoundaryBottom],
	}
	c.Percolates = c.HasHorizontal || c.HasVertical
	return c
}

// Analyze clusters points under radius adjacency and classifies every
// component against the domain edges. Empty input yields a zero Result.
func Analyze(points []world.Position, d world.Domain, radius, tau float64) Result {
	var r Result
	for _, members := range Components(points, radius) {
		c := Classified(members, d, tau)
		r.Components = append(r.Components, c)
		if c.Size() > r.LargestComponentSize {
			r.LargestComponentSize = c.Size()
		}
		if c.TouchesBoundary {
			r.BoundaryTouchingCount++
		}
		if c.Percolates {
			r.HasAny = true
			r.PercolatingSizes = append(r.PercolatingSizes, c.Size())
		}
	}
	return r
}
