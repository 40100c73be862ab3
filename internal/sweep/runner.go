package sweep

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/talgya/defector-percolation/internal/config"
	"github.com/talgya/defector-percolation/internal/entropy"
)

// Results is the output of a full sweep.
type Results struct {
	BaseSeed   int64       `json:"baseSeed"`
	Workers    int         `json:"workers"`
	Elapsed    float64     `json:"elapsedSeconds"`
	Aggregates []Aggregate `json:"results"`
	Runs       []RunRecord `json:"runs"`
}

// Runner fans a sweep out over a bounded worker pool. Runs share nothing;
// each writes only its own slot, so the output order is grid order no
// matter which worker finishes first.
type Runner struct {
	Config  config.Config
	Workers int   // 0 = Config.EffectiveWorkers()
	Seed    int64 // Base seed; 0 = Config.Simulation.Seed, then crypto/rand

	// OnRun, if set, is called after every finished run. It may be called
	// concurrently.
	OnRun func(RunRecord)
}

// NewRunner creates a runner for cfg.
func NewRunner(cfg config.Config) *Runner {
	return &Runner{Config: cfg}
}

// Run executes every (point, repetition) pair. The first failing run
// cancels pending ones and its error is returned.
func (r *Runner) Run(ctx context.Context) (Results, error) {
	cfg := r.Config
	grid := Grid(cfg.Sweep)
	reps := cfg.Sweep.Repetitions

	workers := r.Workers
	if workers <= 0 {
		workers = cfg.EffectiveWorkers()
	}
	base := r.Seed
	if base == 0 {
		base = cfg.Simulation.Seed
	}
	if base == 0 {
		base = entropy.RandomSeed()
	}

	total := len(grid) * reps
	slog.Info("sweep starting",
		"points", len(grid),
		"repetitions", reps,
		"runs", humanize.Comma(int64(total)),
		"workers", workers,
		"steps", cfg.Simulation.Steps,
		"base_seed", base,
	)
	start := time.Now()

	records := make([]RunRecord, total)
	remaining := make([]atomic.Int32, len(grid))
	for i := range remaining {
		remaining[i].Store(int32(reps))
	}
	var finished atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for pi, p := range grid {
		for rep := 0; rep < reps; rep++ {
			slot := pi*reps + rep
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				seed := entropy.RunSeed(base, pi, rep)
				rec, err := RunOne(cfg, p, seed)
				if err != nil {
					return fmt.Errorf("run density=%g ratio=%g temptation=%g rep=%d: %w",
						p.Density, p.DefectorRatio, p.Temptation, rep, err)
				}
				rec.ParamIndex = pi
				rec.Repetition = rep
				records[slot] = rec

				if r.OnRun != nil {
					r.OnRun(rec)
				}
				done := finished.Add(1)
				if remaining[pi].Add(-1) == 0 {
					slog.Info("point finished",
						"density", p.Density,
						"defector_ratio", p.DefectorRatio,
						"temptation", p.Temptation,
						"progress", fmt.Sprintf("%s/%s", humanize.Comma(done), humanize.Comma(int64(total))),
					)
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	elapsed := time.Since(start)
	res := Results{
		BaseSeed:   base,
		Workers:    workers,
		Elapsed:    elapsed.Seconds(),
		Aggregates: Aggregated(grid, records),
		Runs:       records,
	}
	slog.Info("sweep finished",
		"runs", humanize.Comma(int64(total)),
		"elapsed", elapsed.Round(time.Millisecond),
		"started", humanize.Time(start),
	)
	return res, nil
}
