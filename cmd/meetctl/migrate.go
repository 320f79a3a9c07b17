package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/johnquangdev/meeting-agent/internal/infrastructure/database"
)

func newMigrateCommand(deps *commandDeps) *cobra.Command {
	var (
		down  bool
		limit int
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back SQL migrations",
		Long: `Apply the SQL migrations in the migrations directory.

Examples:
  # Apply every pending migration
  meetctl migrate

  # Roll back the most recent migration
  meetctl migrate --down --max 1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := deps.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			db, err := database.NewPostgresDB(cfg)
			if err != nil {
				return err
			}
			defer database.CloseDB(db)

			n, err := database.Migrate(db, dir, down, limit)
			if err != nil {
				return err
			}

			direction := "Applied"
			if down {
				direction = "Rolled back"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d migration(s)\n", direction, n)
			return nil
		},
	}

	cmd.Flags().BoolVar(&down, "down", false, "Roll back instead of applying")
	cmd.Flags().IntVar(&limit, "max", 0, "Maximum number of migrations to run (0 = all)")
	cmd.Flags().StringVar(&dir, "dir", database.DefaultMigrationsDir, "Directory holding the migration files")

	return cmd
}
