// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Report   ReportConfig   `mapstructure:"report"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

// GetURL returns the PostgreSQL connection URL used by migrations
func (p PostgresConfig) GetURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

// PipelineConfig holds settings for the scanner and monitor operations.
type PipelineConfig struct {
	RevenueThreshold float64 `mapstructure:"revenue_threshold"`
	Interval         int     `mapstructure:"interval"` // seconds, pipeline-runner trigger period
	LockTTL          int     `mapstructure:"lock_ttl"` // seconds, run lock lease
	LockEnabled      bool    `mapstructure:"lock_enabled"`
}

// GatewayConfig holds settings for the messaging gateway.
type GatewayConfig struct {
	BaseURL     string  `mapstructure:"base_url"` // self-address used by pipeline callers
	Backend     string  `mapstructure:"backend"`  // "walink" or "sns"
	Timeout     int     `mapstructure:"timeout"`  // milliseconds, per send call
	RatePerSec  float64 `mapstructure:"rate_per_sec"`
	Burst       int     `mapstructure:"burst"`
	AWSRegion   string  `mapstructure:"aws_region"`
	SMSSenderID string  `mapstructure:"sms_sender_id"`
}

// ReportConfig holds settings for the admin run-report emails.
type ReportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	AWSRegion string `mapstructure:"aws_region"`
	FromEmail string `mapstructure:"from_email"`
	ToEmail   string `mapstructure:"to_email"`
}

// AuditConfig holds settings for mirroring delivery logs to Elasticsearch.
type AuditConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Index   string `mapstructure:"index"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
