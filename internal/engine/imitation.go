package engine

import (
	"math/rand/v2"

	"github.com/talgya/defector-percolation/internal/agents"
	"github.com/talgya/defector-percolation/internal/game"
)

// updateStrategies sets every agent's payoff and applies the imitation rule
// on the collision-resolved population pop.
//
// For an agent with neighbors, let b be its best neighbor. The switching
// probability is
//
//	clamp((payoff(b) - payoff(self)) / max(|N(self)|, |N(b)|) / temptation, 0, 1)
//
// and the agent flips its own strategy when u < p for u ~ U[0,1). Agents
// without neighbors keep their strategy and draw nothing.
func (w World) updateStrategies(pop []agents.Agent, rng *rand.Rand) ([]agents.Agent, int) {
	payoffs := game.ComputeAllPayoffs(pop, w.neighborhood)
	out := make([]agents.Agent, 0, len(pop))
	flipped := 0

	for _, a := range pop {
		self := a.WithPayoff(payoffs[a.ID])
		neighbors := w.neighborhood.Neighbors(a, pop)
		if len(neighbors) == 0 {
			out = append(out, self)
			continue
		}

		best, _ := game.BestNeighbor(neighbors, payoffs)
		p := switchProbability(
			payoffs[best.ID]-payoffs[a.ID],
			len(neighbors),
			w.neighborhood.Count(best, pop),
			w.temptation,
		)
		if rng.Float64() < p {
			self = self.WithStrategy(a.Strategy.Opposite())
			flipped++
		}
		out = append(out, self)
	}
	return out, flipped
}

// switchProbability normalizes a payoff difference by the larger of the two
// neighborhood sizes and by temptation, clamped to [0,1].
func switchProbability(diff float64, myCount, bestCount int, temptation float64) float64 {
	if myCount == 0 || bestCount == 0 {
		return 0
	}
	normalized := diff / float64(max(myCount, bestCount)) / temptation
	switch {
	case normalized < 0:
		return 0
	case normalized > 1:
		return 1
	default:
		return normalized
	}
}
