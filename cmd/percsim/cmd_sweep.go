package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/talgya/defector-percolation/internal/config"
	"github.com/talgya/defector-percolation/internal/persistence"
	"github.com/talgya/defector-percolation/internal/report"
	"github.com/talgya/defector-percolation/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the full parameter sweep and write the phase diagram",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, func(c *config.Config) error {
				return applySweepFlags(cmd, c)
			})
			if err != nil {
				return err
			}

			res, err := sweep.NewRunner(cfg).Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("sweep: %w", err)
			}

			if err := report.WriteFiles(cfg.Output.CSV, cfg.Output.JSON, res); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			if cfg.Output.CSV != "" {
				slog.Info("csv written", "path", cfg.Output.CSV)
			}
			if cfg.Output.JSON != "" {
				slog.Info("json written", "path", cfg.Output.JSON)
			}

			if cfg.Output.DB != "" {
				db, err := persistence.Open(cfg.Output.DB)
				if err != nil {
					return err
				}
				defer db.Close()
				id, err := db.SaveSweep(cmd.Context(), res, cfg)
				if err != nil {
					return fmt.Errorf("save sweep: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}

	cmd.Flags().String("csv", "", "CSV output path (overrides output.csv)")
	cmd.Flags().String("json", "", "JSON output path (overrides output.json)")
	cmd.Flags().String("db", "", "SQLite results database (overrides output.db)")
	cmd.Flags().Int("workers", 0, "Concurrent runs (0 = one per CPU)")
	cmd.Flags().Int("repetitions", 0, "Repetitions per parameter point")
	cmd.Flags().Int("steps", 0, "Steps per run")
	cmd.Flags().Int64("seed", 0, "Base seed (0 = random)")
	return cmd
}

func applySweepFlags(cmd *cobra.Command, c *config.Config) error {
	f := cmd.Flags()
	if f.Changed("csv") {
		c.Output.CSV, _ = f.GetString("csv")
	}
	if f.Changed("json") {
		c.Output.JSON, _ = f.GetString("json")
	}
	if f.Changed("db") {
		c.Output.DB, _ = f.GetString("db")
	}
	if f.Changed("workers") {
		c.Sweep.Workers, _ = f.GetInt("workers")
	}
	if f.Changed("repetitions") {
		c.Sweep.Repetitions, _ = f.GetInt("repetitions")
	}
	if f.Changed("steps") {
		c.Simulation.Steps, _ = f.GetInt("steps")
	}
	if f.Changed("seed") {
		c.Simulation.Seed, _ = f.GetInt64("seed")
	}
	return nil
}
