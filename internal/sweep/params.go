// Package sweep runs independent simulations over a parameter grid and
// aggregates their metrics per parameter point.
package sweep

import (
	"math"

	"github.com/talgya/defector-percolation/internal/config"
)

// Params is one point of the grid.
type Params struct {
	Density       float64 `json:"density" db:"density"`
	DefectorRatio float64 `json:"defectorRatio" db:"defector_ratio"`
	Temptation    float64 `json:"temptation" db:"temptation"`
}

// Grid returns the cartesian product of the sweep axes. Density varies
// slowest, temptation fastest; output order is the reporting order.
func Grid(s config.SweepConfig) []Params {
	out := make([]Params, 0, len(s.Densities)*len(s.DefectorRatios)*len(s.Temptations))
	for _, d := range s.Densities {
		for _, r := range s.DefectorRatios {
			for _, t := range s.Temptations {
				out = append(out, Params{Density: d, DefectorRatio: r, Temptation: t})
			}
		}
	}
	return out
}

// AgentCount converts a density (agents per unit area) into a population size.
func AgentCount(cfg config.Config, density float64) int {
	return int(math.Round(density * cfg.Domain.Area()))
}

// FromPoint converts a single-run config section into Params.
func FromPoint(p config.PointConfig) Params {
	return Params{Density: p.Density, DefectorRatio: p.DefectorRatio, Temptation: p.Temptation}
}
