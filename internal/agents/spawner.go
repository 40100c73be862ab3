// Agent spawning: turns a placement into the initial population.
package agents

import "github.com/talgya/defector-percolation/internal/world"

// SpawnConfig controls per-agent attributes of the initial population.
type SpawnConfig struct {
	PhysicalRadius float64
	MobileFraction float64 // Fraction of agents that move; the rest stay put
}

// Spawner creates agents with sequential IDs.
type Spawner struct {
	nextID AgentID
}

// NewSpawner creates a spawner whose first ID is 1.
func NewSpawner() *Spawner {
	return &Spawner{nextID: 1}
}

// Spawn creates one agent per placed position. The first
// round(MobileFraction·N) agents in placement order are mobile.
func (s *Spawner) Spawn(p world.Placement, cfg SpawnConfig) []Agent {
	n := len(p.Positions)
	mobile := int(cfg.MobileFraction*float64(n) + 0.5)
	out := make([]Agent, 0, n)
	for i, pos := range p.Positions {
		strategy := Compliant
		if i < len(p.Defector) && p.Defector[i] {
			strategy = NonCompliant
		}
		out = append(out, Agent{
			ID:             s.next(),
			Strategy:       strategy,
			Position:       pos,
			PhysicalRadius: cfg.PhysicalRadius,
			Mobile:         i < mobile,
		})
	}
	return out
}

func (s *Spawner) next() AgentID {
	id := s.nextID
	s.nextID++
	return id
}
