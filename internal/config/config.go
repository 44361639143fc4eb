package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Email      EmailConfig
	Redis      RedisConfig
	Snapshots  SnapshotConfig
	Advisor    AdvisorConfig
	Dispatcher DispatcherConfig
	SyncWorker SyncWorkerConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
	Seeding    SeedingConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	URL  string
	Host string
	Port int
	User string
	Pass string
	Name string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// SnapshotConfig locates the mock payment-source documents on disk.
type SnapshotConfig struct {
	Dir string
}

// AdvisorConfig configures the LLM-backed policy advisor.
type AdvisorConfig struct {
	APIKey          string
	Models          []string // tried in order
	TimeoutSec      int
	CooldownSec     int // quota cooldown TTL
	RefineBootstrap bool
}

type DispatcherConfig struct {
	QueueSize      int
	TaskTimeoutSec int
	IdleTTLSec     int
}

type SyncWorkerConfig struct {
	Enabled  bool
	CronSpec string
}

type RateLimitConfig struct {
	RequestsPerSec int
	Burst          int
}

type LoggingConfig struct {
	Level  string
	Format string
}

type SeedingConfig struct {
	DemoEmail    string
	DemoPassword string
}

// Load initializes and loads configuration using Viper
func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: .env file not found, using environment variables and defaults")
		} else {
			log.Printf("Error reading config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", viper.ConfigFileUsed())
	}

	return &Config{
		Server: ServerConfig{
			Port: viper.GetString("PORT"),
			Host: viper.GetString("HOST"),
		},
		Database: DatabaseConfig{
			URL:  viper.GetString("DATABASE_URL"),
			Host: viper.GetString("DB_HOST"),
			Port: viper.GetInt("DB_PORT"),
			User: viper.GetString("DB_USER"),
			Pass: viper.GetString("DB_PASSWORD"),
			Name: viper.GetString("DB_NAME"),
		},
		Email: EmailConfig{
			SMTPHost:     viper.GetString("SMTP_HOST"),
			SMTPPort:     viper.GetInt("SMTP_PORT"),
			SMTPUsername: viper.GetString("SMTP_USERNAME"),
			SMTPPassword: viper.GetString("SMTP_PASSWORD"),
			FromEmail:    viper.GetString("FROM_EMAIL"),
			FromName:     viper.GetString("FROM_NAME"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("REDIS_ADDR"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Snapshots: SnapshotConfig{
			Dir: viper.GetString("SNAPSHOT_DIR"),
		},
		Advisor: AdvisorConfig{
			APIKey:          viper.GetString("GEMINI_API_KEY"),
			Models:          viper.GetStringSlice("ADVISOR_MODELS"),
			TimeoutSec:      viper.GetInt("ADVISOR_TIMEOUT_SEC"),
			CooldownSec:     viper.GetInt("ADVISOR_COOLDOWN_SEC"),
			RefineBootstrap: viper.GetBool("ADVISOR_REFINE_BOOTSTRAP"),
		},
		Dispatcher: DispatcherConfig{
			QueueSize:      viper.GetInt("DISPATCHER_QUEUE_SIZE"),
			TaskTimeoutSec: viper.GetInt("DISPATCHER_TASK_TIMEOUT_SEC"),
			IdleTTLSec:     viper.GetInt("DISPATCHER_IDLE_TTL_SEC"),
		},
		SyncWorker: SyncWorkerConfig{
			Enabled:  viper.GetBool("SYNC_WORKER_ENABLED"),
			CronSpec: viper.GetString("SYNC_WORKER_CRON"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSec: viper.GetInt("RATE_LIMIT_REQUESTS_PER_SEC"),
			Burst:          viper.GetInt("RATE_LIMIT_BURST"),
		},
		Logging: LoggingConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Seeding: SeedingConfig{
			DemoEmail:    viper.GetString("DEMO_EMAIL"),
			DemoPassword: viper.GetString("DEMO_PASSWORD"),
		},
	}
}

// setDefaults sets default values for all configuration options
func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("GIN_MODE", "debug")

	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", 5432)
	viper.SetDefault("DB_USER", "gullak_user")
	viper.SetDefault("DB_PASSWORD", "gullak_password")
	viper.SetDefault("DB_NAME", "gullak")

	viper.SetDefault("SMTP_HOST", "smtp.gmail.com")
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("SMTP_USERNAME", "")
	viper.SetDefault("SMTP_PASSWORD", "")
	viper.SetDefault("FROM_EMAIL", "noreply@gullak.app")
	viper.SetDefault("FROM_NAME", "Gullak")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("SNAPSHOT_DIR", "./data/snapshots")

	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("ADVISOR_MODELS", []string{
		"gemini-2.0-flash",
		"gemini-1.5-flash-latest",
		"gemini-1.5-pro-latest",
	})
	viper.SetDefault("ADVISOR_TIMEOUT_SEC", 30)
	viper.SetDefault("ADVISOR_COOLDOWN_SEC", 300)
	viper.SetDefault("ADVISOR_REFINE_BOOTSTRAP", true)

	viper.SetDefault("DISPATCHER_QUEUE_SIZE", 32)
	viper.SetDefault("DISPATCHER_TASK_TIMEOUT_SEC", 120)
	viper.SetDefault("DISPATCHER_IDLE_TTL_SEC", 300)

	viper.SetDefault("SYNC_WORKER_ENABLED", false)
	viper.SetDefault("SYNC_WORKER_CRON", "0 */15 * * * *")

	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_SEC", 100)
	viper.SetDefault("RATE_LIMIT_BURST", 200)

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "console")

	viper.SetDefault("DEMO_EMAIL", "demo@gullak.app")
	viper.SetDefault("DEMO_PASSWORD", "demo12345")
}
