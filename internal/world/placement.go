// Initial agent placement. Scatters non-overlapping points and picks which
// of them start as defectors.
package world

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Layout selects how initial defectors are distributed.
type Layout string

const (
	LayoutUniform Layout = "uniform" // Defectors chosen uniformly at random
	LayoutNoise   Layout = "noise"   // Defectors seeded where simplex noise peaks
)

// ErrInvalidPlacement is returned for placement requests that cannot be satisfied.
var ErrInvalidPlacement = errors.New("invalid placement")

// PlacementConfig holds initial layout parameters.
type PlacementConfig struct {
	Domain         Domain
	Count          int
	PhysicalRadius float64
	DefectorRatio  float64
	Layout         Layout
	NoiseFrequency float64 // Spatial frequency for LayoutNoise
	MaxAttempts    int     // Rejection-sampling attempts per point (0 = 200)
}

// Placement is the result of Place.
type Placement struct {
	Positions []Position
	Defector  []bool // Parallel to Positions
	Crowded   int    // Points accepted despite overlapping an earlier one
}

// Place scatters cfg.Count points with no two closer than 2·PhysicalRadius
// where rejection sampling allows, then marks round(ratio·Count) as defectors.
func Place(cfg PlacementConfig, rng *rand.Rand) (Placement, error) {
	if err := cfg.Domain.Validate(); err != nil {
		return Placement{}, err
	}
	if cfg.Count < 0 {
		return Placement{}, fmt.Errorf("%w: negative count %d", ErrInvalidPlacement, cfg.Count)
	}
	if cfg.DefectorRatio < 0 || cfg.DefectorRatio > 1 {
		return Placement{}, fmt.Errorf("%w: defector ratio %g outside [0,1]", ErrInvalidPlacement, cfg.DefectorRatio)
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 200
	}

	minDist := 2 * cfg.PhysicalRadius
	maxX := cfg.Domain.Width - BoundMargin
	maxY := cfg.Domain.Height - BoundMargin

	p := Placement{
		Positions: make([]Position, 0, cfg.Count),
		Defector:  make([]bool, cfg.Count),
	}
	for i := 0; i < cfg.Count; i++ {
		var candidate Position
		placed := false
		for a := 0; a < attempts; a++ {
			candidate = Position{X: rng.Float64() * maxX, Y: rng.Float64() * maxY}
			if !tooClose(candidate, p.Positions, minDist) {
				placed = true
				break
			}
		}
		if !placed {
			p.Crowded++
		}
		p.Positions = append(p.Positions, candidate)
	}

	numDefectors := int(math.Round(cfg.DefectorRatio * float64(cfg.Count)))
	switch cfg.Layout {
	case LayoutUniform, "":
		for _, idx := range rng.Perm(cfg.Count)[:numDefectors] {
			p.Defector[idx] = true
		}
	case LayoutNoise:
		freq := cfg.NoiseFrequency
		if freq <= 0 {
			freq = 0.15
		}
		noise := opensimplex.NewNormalized(rng.Int64())
		scores := make([]float64, cfg.Count)
		for i, pos := range p.Positions {
			scores[i] = octaveNoise(noise, pos.X, pos.Y, 3, freq, 0.5)
		}
		order := make([]int, cfg.Count)
		for i := range order {
			order[i] = i
		}
		// Highest noise first; index breaks ties so the result is stable.
		sort.SliceStable(order, func(i, j int) bool {
			return scores[order[i]] > scores[order[j]]
		})
		for _, idx := range order[:numDefectors] {
			p.Defector[idx] = true
		}
	default:
		return Placement{}, fmt.Errorf("%w: unknown layout %q", ErrInvalidPlacement, cfg.Layout)
	}

	return p, nil
}

func tooClose(p Position, existing []Position, minDist float64) bool {
	for _, e := range existing {
		if p.DistanceTo(e) < minDist {
			return true
		}
	}
	return false
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
