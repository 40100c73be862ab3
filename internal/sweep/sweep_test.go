package sweep

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/talgya/defector-percolation/internal/config"
)

func smallConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	cfg.Domain.Width, cfg.Domain.Height = 8, 8
	cfg.Simulation.Steps = 5
	cfg.Sweep.Densities = []float64{0.2, 0.4}
	cfg.Sweep.DefectorRatios = []float64{0.5}
	cfg.Sweep.Temptations = []float64{1.1, 1.7}
	cfg.Sweep.Repetitions = 3
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	return cfg
}

func TestGrid_Order(t *testing.T) {
	grid := Grid(config.SweepConfig{
		Densities:      []float64{0.1, 0.2},
		DefectorRatios: []float64{0.3, 0.6},
		Temptations:    []float64{1.5},
	})
	want := []Params{
		{Density: 0.1, DefectorRatio: 0.3, Temptation: 1.5},
		{Density: 0.1, DefectorRatio: 0.6, Temptation: 1.5},
		{Density: 0.2, DefectorRatio: 0.3, Temptation: 1.5},
		{Density: 0.2, DefectorRatio: 0.6, Temptation: 1.5},
	}
	if !reflect.DeepEqual(grid, want) {
		t.Fatalf("grid=%v want %v", grid, want)
	}
}

func TestRunOne_DeterministicAndBounded(t *testing.T) {
	cfg := smallConfig(t)
	p := Params{Density: 0.4, DefectorRatio: 0.5, Temptation: 1.5}
	a, err := RunOne(cfg, p, 77)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	b, err := RunOne(cfg, p, 77)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if a != b {
		t.Fatalf("same seed gave %+v and %+v", a, b)
	}
	if a.AgentCount != AgentCount(cfg, 0.4) || a.AgentCount != 26 {
		t.Fatalf("agents=%d want 26", a.AgentCount)
	}
	if a.FinalCompliance < 0 || a.FinalCompliance > 1 || a.LargestClusterFraction < 0 || a.LargestClusterFraction > 1 {
		t.Fatalf("metrics out of range: %+v", a)
	}
}

func TestRunner_OrderIndependentOfWorkers(t *testing.T) {
	cfg := smallConfig(t)

	run := func(workers int) Results {
		r := NewRunner(cfg)
		r.Workers = workers
		r.Seed = 2024
		res, err := r.Run(context.Background())
		if err != nil {
			t.Fatalf("run workers=%d: %v", workers, err)
		}
		return res
	}
	serial, parallel := run(1), run(4)

	if len(serial.Runs) != 12 || len(serial.Aggregates) != 4 {
		t.Fatalf("runs=%d aggregates=%d", len(serial.Runs), len(serial.Aggregates))
	}
	if !reflect.DeepEqual(serial.Runs, parallel.Runs) {
		t.Fatalf("runs differ between worker counts")
	}
	if !reflect.DeepEqual(serial.Aggregates, parallel.Aggregates) {
		t.Fatalf("aggregates differ between worker counts")
	}
	for i, rec := range serial.Runs {
		if rec.ParamIndex != i/3 || rec.Repetition != i%3 {
			t.Fatalf("slot %d holds point %d rep %d", i, rec.ParamIndex, rec.Repetition)
		}
	}
	grid := Grid(cfg.Sweep)
	for i, a := range serial.Aggregates {
		if a.Params != grid[i] || a.Runs != 3 {
			t.Fatalf("aggregate %d = %+v", i, a)
		}
		if a.DefectorPercolationProbability < 0 || a.DefectorPercolationProbability > 1 {
			t.Fatalf("probability out of range: %+v", a)
		}
	}
}

func TestRunner_CallsOnRunAndHonorsCancel(t *testing.T) {
	cfg := smallConfig(t)
	calls := make(chan RunRecord, 12)
	r := NewRunner(cfg)
	r.Workers = 2
	r.OnRun = func(rec RunRecord) { calls <- rec }
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(calls) != 12 {
		t.Fatalf("OnRun called %d times want 12", len(calls))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewRunner(cfg).Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled sweep: err=%v", err)
	}
}

func TestAggregated(t *testing.T) {
	grid := []Params{{Density: 0.1}, {Density: 0.2}, {Density: 0.3}}
	records := []RunRecord{
		{ParamIndex: 0, AgentCount: 10, FinalCompliance: 1.0, DefectorPercolation: true, LargestClusterFraction: 0.2},
		{ParamIndex: 0, AgentCount: 10, FinalCompliance: 0.5, GeometricPercolation: true, LargestClusterFraction: 0.4},
		{ParamIndex: 2, AgentCount: 30, FinalCompliance: 0.25, DefectorPercolation: true, GeometricPercolation: true},
	}
	got := Aggregated(grid, records)
	if len(got) != 2 {
		t.Fatalf("aggregates=%d want 2 (empty point skipped)", len(got))
	}
	a := got[0]
	if a.Runs != 2 || a.AvgCompliance != 0.75 || a.DefectorPercolationProbability != 0.5 ||
		a.GeometricPercolationProbability != 0.5 || math.Abs(a.AvgLargestClusterFraction-0.3) > 1e-12 {
		t.Fatalf("aggregate=%+v", a)
	}
	if got[1].Density != 0.3 || got[1].AgentCount != 30 || got[1].DefectorPercolationProbability != 1 {
		t.Fatalf("aggregate=%+v", got[1])
	}
}
