package world

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestPlace_CountsAndSpacing(t *testing.T) {
	cfg := PlacementConfig{
		Domain:         Domain{Width: 20, Height: 20},
		Count:          40,
		PhysicalRadius: 0.5,
		DefectorRatio:  0.25,
		Layout:         LayoutUniform,
	}
	p, err := Place(cfg, rand.New(rand.NewPCG(42, 0)))
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if len(p.Positions) != 40 || len(p.Defector) != 40 {
		t.Fatalf("got %d positions, %d flags", len(p.Positions), len(p.Defector))
	}
	defectors := 0
	for _, d := range p.Defector {
		if d {
			defectors++
		}
	}
	if defectors != 10 {
		t.Fatalf("defectors=%d want 10", defectors)
	}
	if p.Crowded != 0 {
		t.Fatalf("crowded=%d want 0 in a sparse domain", p.Crowded)
	}
	for i := range p.Positions {
		if !cfg.Domain.Contains(p.Positions[i]) {
			t.Fatalf("position %v outside domain", p.Positions[i])
		}
		for j := i + 1; j < len(p.Positions); j++ {
			if d := p.Positions[i].DistanceTo(p.Positions[j]); d < 1.0 {
				t.Fatalf("points %d,%d overlap: d=%v", i, j, d)
			}
		}
	}
}

func TestPlace_NoiseLayoutDeterministic(t *testing.T) {
	cfg := PlacementConfig{
		Domain:         Domain{Width: 15, Height: 15},
		Count:          30,
		PhysicalRadius: 0.3,
		DefectorRatio:  0.5,
		Layout:         LayoutNoise,
	}
	a, err := Place(cfg, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("place a: %v", err)
	}
	b, err := Place(cfg, rand.New(rand.NewPCG(9, 9)))
	if err != nil {
		t.Fatalf("place b: %v", err)
	}
	defectors := 0
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] || a.Defector[i] != b.Defector[i] {
			t.Fatalf("placements differ at %d", i)
		}
		if a.Defector[i] {
			defectors++
		}
	}
	if defectors != 15 {
		t.Fatalf("defectors=%d want 15", defectors)
	}
}

func TestPlace_RejectsBadInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))
	base := PlacementConfig{Domain: Domain{Width: 5, Height: 5}, Count: 3, PhysicalRadius: 0.1}

	bad := base
	bad.DefectorRatio = 1.5
	if _, err := Place(bad, rng); !errors.Is(err, ErrInvalidPlacement) {
		t.Fatalf("ratio: err=%v", err)
	}
	bad = base
	bad.Layout = "spiral"
	if _, err := Place(bad, rng); !errors.Is(err, ErrInvalidPlacement) {
		t.Fatalf("layout: err=%v", err)
	}
	bad = base
	bad.Domain = Domain{}
	if _, err := Place(bad, rng); !errors.Is(err, ErrInvalidDomain) {
		t.Fatalf("domain: err=%v", err)
	}
}
