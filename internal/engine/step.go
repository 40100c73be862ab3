package engine

import (
	"log/slog"
	"math/rand/v2"

	"github.com/talgya/defector-percolation/internal/entropy"
	"github.com/talgya/defector-percolation/internal/world"
)

// Step advances the world by one synchronous update:
//  1. every agent proposes a move from the pre-step world,
//  2. proposals are resolved against hard-disk collisions in ID order,
//  3. payoffs are computed on the resolved world and strategies updated.
//
// The random stream is keyed by (seed, step index), so stepping the same
// World twice yields identical results.
func (w World) Step() World {
	rng := entropy.StepRand(w.seed, w.step)

	proposals := w.proposeMoves(rng)
	moved, stats := resolveCollisions(w.agents, proposals)
	updated, flipped := w.updateStrategies(moved, rng)
	stats.Flipped = flipped

	next := w
	next.agents = updated
	next.step = w.step + 1
	next.last = stats

	slog.Debug("step",
		"step", next.step,
		"moved", stats.Moved,
		"rejected", stats.Rejected,
		"degenerate", stats.Degenerate,
		"flipped", stats.Flipped,
	)
	return next
}

// proposeMoves returns one tentative position per agent, in ID order.
// Immobile agents propose their current position and draw nothing.
func (w World) proposeMoves(rng *rand.Rand) []world.Position {
	out := make([]world.Position, len(w.agents))
	for i, a := range w.agents {
		if !a.Mobile {
			out[i] = a.Position
			continue
		}
		out[i] = w.domain.Clamp(a.Position.RandomStep(w.stepSize, rng))
	}
	return out
}

// Run advances w by n steps and returns the final world.
func Run(w World, n int) (World, error) {
	return NewEngine().Run(w, n)
}

