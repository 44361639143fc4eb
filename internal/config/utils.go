package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// IsProduction checks if the application is running in production mode
func IsProduction() bool {
	return strings.EqualFold(viper.GetString("GIN_MODE"), "release")
}

// IsDevelopment checks if the application is running in development mode
func IsDevelopment() bool {
	return !IsProduction()
}

// ValidateConfig checks that required settings are present before startup.
func ValidateConfig() error {
	if IsProduction() {
		if viper.GetString("DATABASE_URL") == "" && viper.GetString("DB_HOST") == "" {
			return fmt.Errorf("DATABASE_URL or DB_HOST must be set in production")
		}
	}
	if dir := viper.GetString("SNAPSHOT_DIR"); dir != "" {
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			return fmt.Errorf("SNAPSHOT_DIR %q is not a directory", dir)
		}
	}
	return nil
}

// PrintConfig logs a redacted summary of the effective configuration.
func PrintConfig() {
	fmt.Printf("   DB: %s:%d/%s\n", viper.GetString("DB_HOST"), viper.GetInt("DB_PORT"), viper.GetString("DB_NAME"))
	fmt.Printf("   Snapshots: %s\n", viper.GetString("SNAPSHOT_DIR"))
	fmt.Printf("   Advisor models: %v\n", viper.GetStringSlice("ADVISOR_MODELS"))
	fmt.Printf("   Advisor key set: %v\n", viper.GetString("GEMINI_API_KEY") != "")
	fmt.Printf("   SMTP configured: %v\n", viper.GetString("SMTP_USERNAME") != "")
	fmt.Printf("   Log level: %s\n", viper.GetString("LOG_LEVEL"))
}
