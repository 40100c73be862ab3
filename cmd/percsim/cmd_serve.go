package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/talgya/defector-percolation/internal/api"
	"github.com/talgya/defector-percolation/internal/persistence"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored sweep results over a read-only HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			dbPath := cfg.Output.DB
			if cmd.Flags().Changed("db") {
				dbPath, _ = cmd.Flags().GetString("db")
			}
			if dbPath == "" {
				return errors.New("serve: no results database (set --db or output.db)")
			}
			port, _ := cmd.Flags().GetInt("port")

			db, err := persistence.Open(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()
			slog.Info("database opened", "path", dbPath)

			srv := &api.Server{Store: db, Port: port, Version: version}
			if err := srv.ListenAndServe(cmd.Context()); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "SQLite results database (overrides output.db)")
	cmd.Flags().Int("port", 8080, "HTTP port")
	return cmd
}
