// Package agents provides the agent data model, strategy tags, and the
// interaction neighborhood shared by payoff lookup and clustering.
package agents

import (
	"fmt"

	"github.com/talgya/defector-percolation/internal/world"
)

// AgentID is a unique identifier for an agent. IDs are never reused.
type AgentID uint64

// Strategy is the compliance behavior an agent plays.
type Strategy uint8

const (
	Compliant    Strategy = iota // Cooperates
	NonCompliant                 // Defects
)

// Opposite returns the other strategy.
func (s Strategy) Opposite() Strategy {
	switch s {
	case Compliant:
		return NonCompliant
	default:
		return Compliant
	}
}

// Cooperates is true only for Compliant.
func (s Strategy) Cooperates() bool {
	return s == Compliant
}

func (s Strategy) String() string {
	switch s {
	case Compliant:
		return "compliant"
	case NonCompliant:
		return "non-compliant"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// Agent is one participant. Agents are values: every update returns a copy.
type Agent struct {
	ID             AgentID        `json:"id"`
	Strategy       Strategy       `json:"strategy"`
	Position       world.Position `json:"position"`
	Payoff         float64        `json:"payoff"`          // Accumulated this step, reset every step
	PhysicalRadius float64        `json:"physical_radius"` // Hard-disk exclusion radius
	Mobile         bool           `json:"mobile"`
}

// WithPosition returns a copy of a at p.
func (a Agent) WithPosition(p world.Position) Agent {
	a.Position = p
	return a
}

// WithStrategy returns a copy of a playing s.
func (a Agent) WithStrategy(s Strategy) Agent {
	a.Strategy = s
	return a
}

// WithPayoff returns a copy of a holding payoff v.
func (a Agent) WithPayoff(v float64) Agent {
	a.Payoff = v
	return a
}

// Defects is shorthand for Strategy == NonCompliant.
func (a Agent) Defects() bool {
	return a.Strategy == NonCompliant
}
