package cmd

import (
	"log"

	"gullak/internal/config"
	"gullak/internal/fx"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long:  `Start the Gullak API server with all services.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	log.Println("========================================")
	log.Println("  Gullak API Server")
	log.Println("========================================")

	log.Println("📋 Loading configuration...")
	cfg := config.Load()

	log.Println("🔍 Validating configuration...")
	if err := config.ValidateConfig(); err != nil {
		log.Fatalf("❌ Configuration validation failed: %v", err)
	}

	log.Println("⚙️  Configuration Summary")
	config.PrintConfig()

	log.Println("🚀 Starting application...")
	log.Printf("   Server: http://%s:%s", cfg.Server.Host, cfg.Server.Port)

	app := fx.NewApplication()
	app.Run()
}
