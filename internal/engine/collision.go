package engine

import (
	"github.com/talgya/defector-percolation/internal/agents"
	"github.com/talgya/defector-percolation/internal/world"
)

// resolveCollisions applies proposals in population order. Each agent is
// checked against agents already resolved this step; unresolved agents do
// not block. A colliding move falls back to the old position, unless the old
// position collides too, in which case the move is kept and counted as
// Degenerate. Every agent appears exactly once in the output.
func resolveCollisions(pop []agents.Agent, proposed []world.Position) ([]agents.Agent, StepStats) {
	var stats StepStats
	accepted := make([]agents.Agent, 0, len(pop))

	for i, a := range pop {
		target := proposed[i]
		if collides(a.PhysicalRadius, target, accepted) {
			if target != a.Position {
				stats.Rejected++
			}
			if collides(a.PhysicalRadius, a.Position, accepted) {
				stats.Degenerate++
			} else {
				target = a.Position
			}
		}
		if target != a.Position {
			stats.Moved++
		}
		accepted = append(accepted, a.WithPosition(target))
	}
	return accepted, stats
}

// collides reports whether a disk of radius r at p overlaps any accepted agent.
// Touching disks (distance == rA+rB) do not collide.
func collides(r float64, p world.Position, accepted []agents.Agent) bool {
	for _, o := range accepted {
		if p.DistanceTo(o.Position) < r+o.PhysicalRadius {
			return true
		}
	}
	return false
}
