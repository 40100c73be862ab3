package game

import "github.com/talgya/defector-percolation/internal/agents"

// PairwisePayoff returns what self earns from one encounter with other.
func PairwisePayoff(self, other agents.Strategy) float64 {
	switch {
	case self.Cooperates() && other.Cooperates():
		return Reward
	case self.Cooperates() && !other.Cooperates():
		return Sucker
	case !self.Cooperates() && other.Cooperates():
		return Temptation
	default:
		return Punishment
	}
}

// AgentPayoff sums the pairwise payoffs of a against every neighbor.
func AgentPayoff(a agents.Agent, neighbors []agents.Agent) float64 {
	total := 0.0
	for _, n := range neighbors {
		total += PairwisePayoff(a.Strategy, n.Strategy)
	}
	return total
}

// BestNeighbor returns the neighbor with the strictly highest payoff.
// Ties keep the first neighbor seen, so the caller's neighbor order is the
// tie-break policy. Returns false when neighbors is empty.
func BestNeighbor(neighbors []agents.Agent, payoffs map[agents.AgentID]float64) (agents.Agent, bool) {
	if len(neighbors) == 0 {
		return agents.Agent{}, false
	}
	best := neighbors[0]
	bestPayoff := payoffs[best.ID]
	for _, n := range neighbors[1:] {
		if p := payoffs[n.ID]; p > bestPayoff {
			best = n
			bestPayoff = p
		}
	}
	return best, true
}

// ComputeAllPayoffs evaluates AgentPayoff for every agent against its
// neighbors in pop.
func ComputeAllPayoffs(pop []agents.Agent, nb agents.Neighborhood) map[agents.AgentID]float64 {
	out := make(map[agents.AgentID]float64, len(pop))
	for _, a := range pop {
		out[a.ID] = AgentPayoff(a, nb.Neighbors(a, pop))
	}
	return out
}
