package main

import (
	"context"
	"fmt"
	"os"

	"history-quiz/internal/config"
	"history-quiz/internal/database"
	"history-quiz/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Oracle schema for the progress store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if err := logger.Initialize(cfg.Logger); err != nil {
				return err
			}
			defer logger.Sync()

			db, err := database.NewSQLXOracleDB(cmd.Context(), cfg.GetDSN())
			if err != nil {
				return err
			}
			defer db.Close()

			dir := database.Up
			if down {
				dir = database.Down
			}
			return database.RunMigrations(cmd.Context(), db, dir)
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back instead of applying")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
