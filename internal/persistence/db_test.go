package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/talgya/defector-percolation/internal/config"
	"github.com/talgya/defector-percolation/internal/sweep"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResults() sweep.Results {
	p0 := sweep.Params{Density: 0.1, DefectorRatio: 0.5, Temptation: 1.3}
	p1 := sweep.Params{Density: 0.2, DefectorRatio: 0.5, Temptation: 1.3}
	runs := []sweep.RunRecord{
		{ParamIndex: 0, Repetition: 0, Seed: 11, Params: p0, AgentCount: 40, FinalCompliance: 0.6, DefectorPercolation: true, LargestClusterFraction: 0.3},
		{ParamIndex: 0, Repetition: 1, Seed: 12, Params: p0, AgentCount: 40, FinalCompliance: 0.4, GeometricPercolation: true, LargestClusterFraction: 0.1},
		{ParamIndex: 1, Repetition: 0, Seed: 13, Params: p1, AgentCount: 80, FinalCompliance: 0.9},
		{ParamIndex: 1, Repetition: 1, Seed: 14, Params: p1, AgentCount: 80, FinalCompliance: 0.7, DefectorPercolation: true, GeometricPercolation: true, LargestClusterFraction: 0.5},
	}
	return sweep.Results{
		BaseSeed:   42,
		Workers:    2,
		Elapsed:    1.5,
		Runs:       runs,
		Aggregates: sweep.Aggregated([]sweep.Params{p0, p1}, runs),
	}
}

func TestSaveSweep_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	res := sampleResults()

	id, err := db.SaveSweep(ctx, res, cfg)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	h, err := db.GetSweep(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if h.BaseSeed != 42 || h.Workers != 2 || h.Points != 2 || h.Runs != 4 || h.Steps != cfg.Simulation.Steps {
		t.Fatalf("header=%+v", h)
	}
	if h.Config == "" {
		t.Fatalf("config provenance not stored")
	}

	aggs, err := db.Aggregates(ctx, id)
	if err != nil {
		t.Fatalf("aggregates: %v", err)
	}
	if !reflect.DeepEqual(aggs, res.Aggregates) {
		t.Fatalf("aggregates=%+v want %+v", aggs, res.Aggregates)
	}

	runs, err := db.Runs(ctx, id)
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !reflect.DeepEqual(runs, res.Runs) {
		t.Fatalf("runs=%+v want %+v", runs, res.Runs)
	}

	latest, err := db.LatestSweep(ctx)
	if err != nil || latest.ID != id {
		t.Fatalf("latest=%v err=%v", latest.ID, err)
	}
	list, err := db.ListSweeps(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("list=%v err=%v", list, err)
	}
}

func TestGetSweep_NotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.GetSweep(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
	if _, err := db.LatestSweep(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("latest on empty db: err=%v", err)
	}
}
