// Package world provides the continuous 2D domain and point geometry.
// Positions are plain values; nothing here holds simulation state.
package world

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// BoundMargin keeps clamped positions strictly inside the far edges.
const BoundMargin = 0.1

// Position is a point in the domain [0,W)×[0,H).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceTo returns the Euclidean distance between two positions.
func (p Position) DistanceTo(o Position) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// IsWithinRadius reports whether o lies within r of p, boundary included.
func (p Position) IsWithinRadius(o Position, r float64) bool {
	return p.DistanceTo(o) <= r
}

// RandomStep displaces p by stepSize along a uniformly random heading.
func (p Position) RandomStep(stepSize float64, rng *rand.Rand) Position {
	theta := rng.Float64() * 2 * math.Pi
	return Position{
		X: p.X + stepSize*math.Cos(theta),
		Y: p.Y + stepSize*math.Sin(theta),
	}
}

// ConstrainToBounds clamps p into [0, w-BoundMargin]×[0, h-BoundMargin].
func (p Position) ConstrainToBounds(w, h float64) Position {
	return p.ConstrainToBoundsMargin(w, h, BoundMargin)
}

// ConstrainToBoundsMargin clamps p into [0, w-eps]×[0, h-eps].
func (p Position) ConstrainToBoundsMargin(w, h, eps float64) Position {
	return Position{
		X: clamp(p.X, 0, w-eps),
		Y: clamp(p.Y, 0, h-eps),
	}
}

// String returns a compact representation.
func (p Position) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
