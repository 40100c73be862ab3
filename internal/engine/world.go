// Package engine provides the world snapshot, the synchronous step, and the
// fixed-length run loop.
package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talgya/defector-percolation/internal/agents"
	"github.com/talgya/defector-percolation/internal/cluster"
	"github.com/talgya/defector-percolation/internal/game"
	"github.com/talgya/defector-percolation/internal/world"
)

// Construction errors. NewWorld wraps these so callers can use errors.Is.
var (
	ErrInvalidRadius     = errors.New("radius must be positive")
	ErrDuplicateID       = errors.New("duplicate agent id")
	ErrOutOfBounds       = errors.New("agent outside domain")
	ErrInvalidTemptation = errors.New("temptation must be positive")
	ErrInvalidStepSize   = errors.New("step size must be non-negative")
	ErrNegativeSteps     = errors.New("step count must be non-negative")
)

// WorldConfig holds the per-run constants of a world.
type WorldConfig struct {
	Domain            world.Domain
	InteractionRadius float64 // Payoff neighborhood and cluster adjacency
	Temptation        float64 // Normalizes switching probability (0 = game.Temptation)
	StepSize          float64 // Movement per step (0 = 1.0)
	BoundaryTolerance float64 // Edge distance that counts as touching (0 = cluster.DefaultTolerance)
	Seed              int64
}

// StepStats summarizes what one step did.
type StepStats struct {
	Moved      int `json:"moved"`      // Agents whose position changed
	Rejected   int `json:"rejected"`   // Proposed moves that collided
	Degenerate int `json:"degenerate"` // Collided moves accepted because the old spot also collided
	Flipped    int `json:"flipped"`    // Strategy changes
}

// World is an immutable snapshot of a run. Step returns a new World and
// leaves the receiver untouched.
type World struct {
	domain       world.Domain
	neighborhood agents.Neighborhood
	temptation   float64
	stepSize     float64
	tolerance    float64
	seed         int64

	// Sorted by ID. This is the canonical iteration order for every phase.
	agents []agents.Agent

	step uint64
	last StepStats
}

// NewWorld validates cfg and the initial population and builds step 0.
func NewWorld(cfg WorldConfig, initial []agents.Agent) (World, error) {
	if err := cfg.Domain.Validate(); err != nil {
		return World{}, err
	}
	if cfg.InteractionRadius <= 0 {
		return World{}, fmt.Errorf("interaction %w: %g", ErrInvalidRadius, cfg.InteractionRadius)
	}
	if cfg.Temptation == 0 {
		cfg.Temptation = game.Temptation
	}
	if cfg.Temptation < 0 {
		return World{}, fmt.Errorf("%w: %g", ErrInvalidTemptation, cfg.Temptation)
	}
	if cfg.StepSize == 0 {
		cfg.StepSize = 1.0
	}
	if cfg.StepSize < 0 {
		return World{}, fmt.Errorf("%w: %g", ErrInvalidStepSize, cfg.StepSize)
	}
	if cfg.BoundaryTolerance <= 0 {
		cfg.BoundaryTolerance = cluster.DefaultTolerance
	}

	pop := make([]agents.Agent, len(initial))
	copy(pop, initial)
	sort.Slice(pop, func(i, j int) bool { return pop[i].ID < pop[j].ID })

	for i, a := range pop {
		if i > 0 && pop[i-1].ID == a.ID {
			return World{}, fmt.Errorf("%w: %d", ErrDuplicateID, a.ID)
		}
		if a.PhysicalRadius <= 0 {
			return World{}, fmt.Errorf("agent %d physical %w: %g", a.ID, ErrInvalidRadius, a.PhysicalRadius)
		}
		if !cfg.Domain.Contains(a.Position) {
			return World{}, fmt.Errorf("%w: agent %d at %v", ErrOutOfBounds, a.ID, a.Position)
		}
	}

	return World{
		domain:       cfg.Domain,
		neighborhood: agents.NewNeighborhood(cfg.InteractionRadius),
		temptation:   cfg.Temptation,
		stepSize:     cfg.StepSize,
		tolerance:    cfg.BoundaryTolerance,
		seed:         cfg.Seed,
		agents:       pop,
	}, nil
}

// Domain returns the simulation area.
func (w World) Domain() world.Domain { return w.domain }

// Neighborhood returns the interaction policy.
func (w World) Neighborhood() agents.Neighborhood { return w.neighborhood }

// Temptation returns the normalization constant of the strategy update.
func (w World) Temptation() float64 { return w.temptation }

// BoundaryTolerance returns the edge distance used for percolation.
func (w World) BoundaryTolerance() float64 { return w.tolerance }

// Seed returns the run seed.
func (w World) Seed() int64 { return w.seed }

// StepIndex returns how many steps produced this world.
func (w World) StepIndex() uint64 { return w.step }

// LastStep returns the stats of the step that produced this world.
func (w World) LastStep() StepStats { return w.last }

// Len returns the population size.
func (w World) Len() int { return len(w.agents) }

// Agents returns a copy of the population in ID order.
func (w World) Agents() []agents.Agent {
	out := make([]agents.Agent, len(w.agents))
	copy(out, w.agents)
	return out
}

// Agent returns the agent with the given ID.
func (w World) Agent(id agents.AgentID) (agents.Agent, bool) {
	i := sort.Search(len(w.agents), func(i int) bool { return w.agents[i].ID >= id })
	if i < len(w.agents) && w.agents[i].ID == id {
		return w.agents[i], true
	}
	return agents.Agent{}, false
}

// AgentAt returns the lowest-ID agent standing exactly at p.
func (w World) AgentAt(p world.Position) (agents.Agent, bool) {
	for _, a := range w.agents {
		if a.Position == p {
			return a, true
		}
	}
	return agents.Agent{}, false
}

// Neighbors returns a's interaction neighbors in this world, in ID order.
func (w World) Neighbors(a agents.Agent) []agents.Agent {
	return w.neighborhood.Neighbors(a, w.agents)
}

// Positions returns every agent position in ID order.
func (w World) Positions() []world.Position {
	out := make([]world.Position, len(w.agents))
	for i, a := range w.agents {
		out[i] = a.Position
	}
	return out
}

// DefectorPositions returns the positions of non-compliant agents in ID order.
func (w World) DefectorPositions() []world.Position {
	var out []world.Position
	for _, a := range w.agents {
		if a.Defects() {
			out = append(out, a.Position)
		}
	}
	return out
}

// DefectorCount returns the number of non-compliant agents.
func (w World) DefectorCount() int {
	n := 0
	for _, a := range w.agents {
		if a.Defects() {
			n++
		}
	}
	return n
}

// ComplianceRate returns the compliant fraction, or 0 for an empty world.
func (w World) ComplianceRate() float64 {
	if len(w.agents) == 0 {
		return 0
	}
	return float64(len(w.agents)-w.DefectorCount()) / float64(len(w.agents))
}

// ClusterAnalysis summarizes defector clusters under interaction adjacency.
type ClusterAnalysis struct {
	Count      int                `json:"count"`
	AvgSize    float64            `json:"avg_size"`
	Components [][]world.Position `json:"components"`
}

// ClusterAnalysis clusters the non-compliant agents.
func (w World) ClusterAnalysis() ClusterAnalysis {
	comps := cluster.Components(w.DefectorPositions(), w.neighborhood.Radius)
	ca := ClusterAnalysis{Count: len(comps), Components: comps}
	if len(comps) > 0 {
		total := 0
		for _, c := range comps {
			total += len(c)
		}
		ca.AvgSize = float64(total) / float64(len(comps))
	}
	return ca
}

// String returns a summary of the world.
func (w World) String() string {
	return fmt.Sprintf("World(step=%d, agents=%d, compliance=%.3f, %v)",
		w.step, len(w.agents), w.ComplianceRate(), w.domain)
}
