package cmd

import (
	"log"

	"gullak/internal/config"
	"gullak/internal/database"
	appfx "gullak/internal/fx"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the demo user and mock payment-source snapshots",
	Run: func(cmd *cobra.Command, args []string) {
		runSeed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed() {
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
	if err := database.Seed(db, cfg, logger); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
}
