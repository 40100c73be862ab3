// Package config loads simulation parameters from embedded defaults
// overlaid with an optional YAML file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/talgya/defector-percolation/internal/world"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Domain      world.Domain      `yaml:"domain"`
	Agents      AgentsConfig      `yaml:"agents"`
	Simulation  SimulationConfig  `yaml:"simulation"`
	Percolation PercolationConfig `yaml:"percolation"`
	Run         PointConfig       `yaml:"run"`
	Sweep       SweepConfig       `yaml:"sweep"`
	Output      OutputConfig      `yaml:"output"`
}

// AgentsConfig controls the initial population.
type AgentsConfig struct {
	PhysicalRadius float64      `yaml:"physical_radius"`
	MobileFraction float64      `yaml:"mobile_fraction"`
	Layout         world.Layout `yaml:"layout"`
	NoiseFrequency float64      `yaml:"noise_frequency"`
}

// SimulationConfig controls the step engine.
type SimulationConfig struct {
	InteractionRadius float64 `yaml:"interaction_radius"`
	StepSize          float64 `yaml:"step_size"`
	Steps             int     `yaml:"steps"`
	Seed              int64   `yaml:"seed"`
}

// PercolationConfig controls boundary classification.
type PercolationConfig struct {
	BoundaryTolerance float64 `yaml:"boundary_tolerance"`
}

// PointConfig is one parameter point.
type PointConfig struct {
	Density       float64 `yaml:"density"`
	DefectorRatio float64 `yaml:"defector_ratio"`
	Temptation    float64 `yaml:"temptation"`
}

// SweepConfig lists the axes of the parameter grid.
type SweepConfig struct {
	Densities      []float64 `yaml:"densities"`
	DefectorRatios []float64 `yaml:"defector_ratios"`
	Temptations    []float64 `yaml:"temptations"`
	Repetitions    int       `yaml:"repetitions"`
	Workers        int       `yaml:"workers"`
}

// OutputConfig names result sinks. Empty paths disable a sink.
type OutputConfig struct {
	CSV           string `yaml:"csv"`
	JSON          string `yaml:"json"`
	DB            string `yaml:"db"`
	Trajectory    string `yaml:"trajectory"`
	SnapshotEvery int    `yaml:"snapshot_every"`
}

// Default returns the embedded defaults.
func Default() (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing embedded defaults: %w", err)
	}
	return cfg, nil
}

// Load reads path over the embedded defaults and validates the result.
// If path is empty, only the defaults are used.
func Load(path string) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		// Only keys present in the file overwrite defaults.
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// EffectiveWorkers resolves Workers = 0 to the CPU count.
func (c Config) EffectiveWorkers() int {
	if c.Sweep.Workers > 0 {
		return c.Sweep.Workers
	}
	return runtime.NumCPU()
}

// Validate rejects configurations that would abort a run.
func (c Config) Validate() error {
	if err := c.Domain.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if c.Agents.PhysicalRadius <= 0 {
		return fmt.Errorf("%w: agents.physical_radius must be positive, got %g", ErrInvalid, c.Agents.PhysicalRadius)
	}
	if c.Agents.MobileFraction < 0 || c.Agents.MobileFraction > 1 {
		return fmt.Errorf("%w: agents.mobile_fraction %g outside [0,1]", ErrInvalid, c.Agents.MobileFraction)
	}
	switch c.Agents.Layout {
	case world.LayoutUniform, world.LayoutNoise:
	default:
		return fmt.Errorf("%w: agents.layout %q (want uniform or noise)", ErrInvalid, c.Agents.Layout)
	}
	if c.Simulation.InteractionRadius <= 0 {
		return fmt.Errorf("%w: simulation.interaction_radius must be positive, got %g", ErrInvalid, c.Simulation.InteractionRadius)
	}
	if c.Simulation.StepSize < 0 {
		return fmt.Errorf("%w: simulation.step_size must be non-negative, got %g", ErrInvalid, c.Simulation.StepSize)
	}
	if c.Simulation.Steps < 0 {
		return fmt.Errorf("%w: simulation.steps must be non-negative, got %d", ErrInvalid, c.Simulation.Steps)
	}
	if c.Percolation.BoundaryTolerance <= 0 {
		return fmt.Errorf("%w: percolation.boundary_tolerance must be positive, got %g", ErrInvalid, c.Percolation.BoundaryTolerance)
	}
	if err := validatePoint("run", c.Run); err != nil {
		return err
	}
	if len(c.Sweep.Densities) == 0 || len(c.Sweep.DefectorRatios) == 0 || len(c.Sweep.Temptations) == 0 {
		return fmt.Errorf("%w: sweep axes must be non-empty", ErrInvalid)
	}
	for _, d := range c.Sweep.Densities {
		if err := validatePoint("sweep", PointConfig{Density: d, Temptation: 1}); err != nil {
			return err
		}
	}
	for _, r := range c.Sweep.DefectorRatios {
		if err := validatePoint("sweep", PointConfig{Density: 1, DefectorRatio: r, Temptation: 1}); err != nil {
			return err
		}
	}
	for _, t := range c.Sweep.Temptations {
		if err := validatePoint("sweep", PointConfig{Density: 1, Temptation: t}); err != nil {
			return err
		}
	}
	if c.Sweep.Repetitions <= 0 {
		return fmt.Errorf("%w: sweep.repetitions must be positive, got %d", ErrInvalid, c.Sweep.Repetitions)
	}
	if c.Sweep.Workers < 0 {
		return fmt.Errorf("%w: sweep.workers must be non-negative, got %d", ErrInvalid, c.Sweep.Workers)
	}
	if c.Output.SnapshotEvery < 0 {
		return fmt.Errorf("%w: output.snapshot_every must be non-negative, got %d", ErrInvalid, c.Output.SnapshotEvery)
	}
	return nil
}

func validatePoint(section string, p PointConfig) error {
	if p.Density <= 0 {
		return fmt.Errorf("%w: %s density must be positive, got %g", ErrInvalid, section, p.Density)
	}
	if p.DefectorRatio < 0 || p.DefectorRatio > 1 {
		return fmt.Errorf("%w: %s defector ratio %g outside [0,1]", ErrInvalid, section, p.DefectorRatio)
	}
	if p.Temptation <= 0 {
		return fmt.Errorf("%w: %s temptation must be positive, got %g", ErrInvalid, section, p.Temptation)
	}
	return nil
}
