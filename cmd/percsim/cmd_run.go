package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/defector-percolation/internal/config"
	"github.com/talgya/defector-percolation/internal/engine"
	"github.com/talgya/defector-percolation/internal/entropy"
	"github.com/talgya/defector-percolation/internal/persistence"
	"github.com/talgya/defector-percolation/internal/sweep"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one simulation at a single parameter point",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(c *config.Config) error {
				return applyRunFlags(cmd, c)
			})
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			rec, err := runPoint(cfg)
			if err != nil {
				return err
			}
			return printRecord(cmd.OutOrStdout(), rec, jsonOut)
		},
	}

	cmd.Flags().Float64("density", 0, "Agent density (agents per unit area)")
	cmd.Flags().Float64("defector-ratio", 0, "Initial fraction of defectors")
	cmd.Flags().Float64("temptation", 0, "Temptation divisor of the switch probability")
	cmd.Flags().Int64("seed", 0, "Run seed (0 = random)")
	cmd.Flags().Int("steps", 0, "Number of steps")
	cmd.Flags().String("trajectory", "", "Write a zstd JSONL trajectory to this path")
	cmd.Flags().Int("snapshot-every", 0, "Include the full population every N steps in the trajectory")
	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}

func applyRunFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	if f.Changed("density") {
		c.Run.Density, _ = f.GetFloat64("density")
	}
	if f.Changed("defector-ratio") {
		c.Run.DefectorRatio, _ = f.GetFloat64("defector-ratio")
	}
	if f.Changed("temptation") {
		c.Run.Temptation, _ = f.GetFloat64("temptation")
	}
	if f.Changed("seed") {
		c.Simulation.Seed, _ = f.GetInt64("seed")
	}
	if f.Changed("steps") {
		c.Simulation.Steps, _ = f.GetInt("steps")
	}
	if f.Changed("trajectory") {
		c.Output.Trajectory, _ = f.GetString("trajectory")
	}
	if f.Changed("snapshot-every") {
		c.Output.SnapshotEvery, _ = f.GetInt("snapshot-every")
	}
	return nil
}

// runPoint builds and runs the configured point, streaming the trajectory
// if one is configured.
func runPoint(cfg config.Config) (sweep.RunRecord, error) {
	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = entropy.RandomSeed()
	}
	p := sweep.FromPoint(cfg.Run)

	w, err := sweep.Build(cfg, p, seed)
	if err != nil {
		return sweep.RunRecord{}, err
	}
	slog.Info("run starting",
		"agents", w.Len(),
		"density", p.Density,
		"defector_ratio", p.DefectorRatio,
		"temptation", p.Temptation,
		"steps", cfg.Simulation.Steps,
		"seed", seed,
	)

	eng := engine.NewEngine()
	var traj *persistence.TrajectoryWriter
	var writeErr error
	if cfg.Output.Trajectory != "" {
		traj, err = persistence.NewTrajectoryWriter(cfg.Output.Trajectory)
		if err != nil {
			return sweep.RunRecord{}, fmt.Errorf("open trajectory: %w", err)
		}
		defer func() {
			if traj != nil {
				traj.Close()
			}
		}()

		every := cfg.Output.SnapshotEvery
		eng.OnStep = func(w engine.World) {
			if writeErr != nil {
				return
			}
			withAgents := every > 0 && w.StepIndex()%uint64(every) == 0
			writeErr = traj.Write(persistence.EntryFromWorld(w, withAgents))
		}
		if err := traj.Write(persistence.EntryFromWorld(w, true)); err != nil {
			return sweep.RunRecord{}, fmt.Errorf("write trajectory: %w", err)
		}
	}

	start := time.Now()
	final, err := eng.Run(w, cfg.Simulation.Steps)
	if err != nil {
		return sweep.RunRecord{}, err
	}
	if writeErr != nil {
		return sweep.RunRecord{}, fmt.Errorf("write trajectory: %w", writeErr)
	}
	if traj != nil {
		if err := traj.Close(); err != nil {
			return sweep.RunRecord{}, fmt.Errorf("close trajectory: %w", err)
		}
		traj = nil
		slog.Info("trajectory written", "path", cfg.Output.Trajectory)
	}

	rec := sweep.Measure(final)
	rec.Params = p
	slog.Info("run finished",
		"steps", humanize.Comma(int64(cfg.Simulation.Steps)),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return rec, nil
}

func printRecord(out io.Writer, rec sweep.RunRecord, jsonOut bool) error {
	if jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}
	fmt.Fprintf(out, "agents:                   %d\n", rec.AgentCount)
	fmt.Fprintf(out, "seed:                     %d\n", rec.Seed)
	fmt.Fprintf(out, "final compliance:         %.4f\n", rec.FinalCompliance)
	fmt.Fprintf(out, "defector percolation:     %t\n", rec.DefectorPercolation)
	fmt.Fprintf(out, "geometric percolation:    %t\n", rec.GeometricPercolation)
	fmt.Fprintf(out, "largest cluster fraction: %.4f\n", rec.LargestClusterFraction)
	return nil
}
