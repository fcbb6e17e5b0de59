// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like PIPELINE_REVENUE_THRESHOLD
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	applyDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func applyDefaults() {
	viper.SetDefault("app.name", "growth-assistant")
	viper.SetDefault("app.environment", "development")

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 15000)
	viper.SetDefault("server.write_timeout", 30000)
	viper.SetDefault("server.shutdown_timeout", 30000)

	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.database", "growth_assistant")
	viper.SetDefault("database.postgres.user", "postgres")
	viper.SetDefault("database.postgres.max_connections", 25)
	viper.SetDefault("database.postgres.max_idle", 5)
	viper.SetDefault("database.postgres.sslmode", "disable")

	viper.SetDefault("database.redis.address", "localhost:6379")
	viper.SetDefault("database.redis.db", 0)

	viper.SetDefault("database.elasticsearch.enabled", false)
	viper.SetDefault("database.elasticsearch.index", "notification-logs")

	viper.SetDefault("pipeline.revenue_threshold", 50000)
	viper.SetDefault("pipeline.interval", 3600)
	viper.SetDefault("pipeline.lock_ttl", 300)
	viper.SetDefault("pipeline.lock_enabled", true)

	viper.SetDefault("gateway.base_url", "http://localhost:8080")
	viper.SetDefault("gateway.backend", "walink")
	viper.SetDefault("gateway.timeout", 10000)
	viper.SetDefault("gateway.rate_per_sec", 5)
	viper.SetDefault("gateway.burst", 10)
	viper.SetDefault("gateway.aws_region", "us-east-1")

	viper.SetDefault("report.enabled", false)
	viper.SetDefault("report.aws_region", "us-east-1")

	viper.SetDefault("audit.enabled", false)
	viper.SetDefault("audit.index", "notification-logs")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in config values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig applies direct env fallbacks for values still empty
// after viper merging. Kept for operators who export flat variables.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("POSTGRES_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
	if cfg.Database.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Database.Redis.Password = val
		}
	}
	if val := os.Getenv("REVENUE_THRESHOLD"); val != "" {
		var threshold float64
		if _, err := fmt.Sscanf(val, "%f", &threshold); err == nil && threshold > 0 {
			cfg.Pipeline.RevenueThreshold = threshold
		}
	}
	if val := os.Getenv("GATEWAY_BASE_URL"); val != "" {
		cfg.Gateway.BaseURL = val
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Pipeline.RevenueThreshold <= 0 {
		return fmt.Errorf("pipeline.revenue_threshold must be positive, got %v", cfg.Pipeline.RevenueThreshold)
	}
	if cfg.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	switch cfg.Gateway.Backend {
	case "walink", "sns":
	default:
		return fmt.Errorf("gateway.backend must be walink or sns, got %q", cfg.Gateway.Backend)
	}
	if cfg.Report.Enabled && (cfg.Report.FromEmail == "" || cfg.Report.ToEmail == "") {
		return fmt.Errorf("report.from_email and report.to_email are required when report.enabled")
	}
	return nil
}
