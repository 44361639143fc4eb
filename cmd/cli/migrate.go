package cmd

import (
	"log"

	"gullak/internal/config"
	"gullak/internal/database"
	appfx "gullak/internal/fx"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		runMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate() {
	cfg := config.Load()

	logger, err := appfx.NewLogger(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := appfx.NewDatabase(cfg, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
}
