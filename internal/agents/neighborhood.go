package agents

import "github.com/talgya/defector-percolation/internal/world"

// Neighborhood is the fixed interaction radius. The same relation defines
// payoff neighbors and cluster adjacency.
type Neighborhood struct {
	Radius float64 `json:"radius"`
}

// NewNeighborhood returns a policy with the given interaction radius.
func NewNeighborhood(radius float64) Neighborhood {
	return Neighborhood{Radius: radius}
}

// Within returns the candidates within Radius of center, excluding points
// equal to center. Output preserves candidate order.
func (n Neighborhood) Within(center world.Position, candidates []world.Position) []world.Position {
	var out []world.Position
	for _, c := range candidates {
		if c == center {
			continue
		}
		if center.IsWithinRadius(c, n.Radius) {
			out = append(out, c)
		}
	}
	return out
}

// Neighbors returns the agents within Radius of self, excluding self by ID.
// Output preserves candidate order.
func (n Neighborhood) Neighbors(self Agent, candidates []Agent) []Agent {
	var out []Agent
	for _, c := range candidates {
		if c.ID == self.ID {
			continue
		}
		if self.Position.IsWithinRadius(c.Position, n.Radius) {
			out = append(out, c)
		}
	}
	return out
}

// Count returns len(Neighbors(self, candidates)) without allocating.
func (n Neighborhood) Count(self Agent, candidates []Agent) int {
	count := 0
	for _, c := range candidates {
		if c.ID != self.ID && self.Position.IsWithinRadius(c.Position, n.Radius) {
			count++
		}
	}
	return count
}
