package sweep

import (
	"fmt"

	"github.com/talgya/defector-percolation/internal/agents"
	"github.com/talgya/defector-percolation/internal/config"
	"github.com/talgya/defector-percolation/internal/engine"
	"github.com/talgya/defector-percolation/internal/entropy"
	"github.com/talgya/defector-percolation/internal/world"
)

// RunRecord holds the metrics of one finished run.
type RunRecord struct {
	ParamIndex int   `json:"paramIndex" db:"param_index"`
	Repetition int   `json:"repetition" db:"repetition"`
	Seed       int64 `json:"seed" db:"seed"`
	Params
	AgentCount int `json:"agentCount" db:"agent_count"`

	FinalCompliance        float64 `json:"finalCompliance" db:"final_compliance"`
	DefectorPercolation    bool    `json:"defectorPercolation" db:"defector_percolation"`
	GeometricPercolation   bool    `json:"geometricPercolation" db:"geometric_percolation"`
	LargestClusterFraction float64 `json:"largestClusterFraction" db:"largest_cluster_fraction"`
}

// Build creates the initial world of a run at p with the given seed.
func Build(cfg config.Config, p Params, seed int64) (engine.World, error) {
	placement, err := world.Place(world.PlacementConfig{
		Domain:         cfg.Domain,
		Count:          AgentCount(cfg, p.Density),
		PhysicalRadius: cfg.Agents.PhysicalRadius,
		DefectorRatio:  p.DefectorRatio,
		Layout:         cfg.Agents.Layout,
		NoiseFrequency: cfg.Agents.NoiseFrequency,
	}, entropy.NewRand(seed, entropy.StreamPlacement))
	if err != nil {
		return engine.World{}, fmt.Errorf("place agents: %w", err)
	}

	pop := agents.NewSpawner().Spawn(placement, agents.SpawnConfig{
		PhysicalRadius: cfg.Agents.PhysicalRadius,
		MobileFraction: cfg.Agents.MobileFraction,
	})

	w, err := engine.NewWorld(engine.WorldConfig{
		Domain:            cfg.Domain,
		InteractionRadius: cfg.Simulation.InteractionRadius,
		Temptation:        p.Temptation,
		StepSize:          cfg.Simulation.StepSize,
		BoundaryTolerance: cfg.Percolation.BoundaryTolerance,
		Seed:              seed,
	}, pop)
	if err != nil {
		return engine.World{}, fmt.Errorf("new world: %w", err)
	}
	return w, nil
}

// Measure computes the run metrics of a final world.
func Measure(w engine.World) RunRecord {
	defectors := engine.AnalyzeDefectorPercolation(w)
	rec := RunRecord{
		Seed:                 w.Seed(),
		AgentCount:           w.Len(),
		FinalCompliance:      w.ComplianceRate(),
		DefectorPercolation:  defectors.HasAny,
		GeometricPercolation: engine.GeometricPercolates(w),
	}
	if w.Len() > 0 {
		rec.LargestClusterFraction = float64(defectors.LargestComponentSize) / float64(w.Len())
	}
	return rec
}

// RunOne builds, runs, and measures a single simulation.
func RunOne(cfg config.Config, p Params, seed int64) (RunRecord, error) {
	w, err := Build(cfg, p, seed)
	if err != nil {
		return RunRecord{}, err
	}
	w, err = engine.Run(w, cfg.Simulation.Steps)
	if err != nil {
		return RunRecord{}, err
	}
	rec := Measure(w)
	rec.Params = p
	return rec, nil
}
