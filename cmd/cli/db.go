package cmd

import (
	"fmt"
	"log"

	"gullak/internal/config"
	appfx "gullak/internal/fx"

	"github.com/spf13/cobra"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database utilities",
}

var dbPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check database connectivity",
	Run: func(cmd *cobra.Command, args []string) {
		runDBPing()
	},
}

func init() {
	dbCmd.AddCommand(dbPingCmd)
	rootCmd.AddCommand(dbCmd)
}

func runDBPing() {
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

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to get database instance: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("ping failed: %v", err)
	}
	fmt.Println("database is reachable")
}
