package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Scoring  ScoringConfig  `yaml:"scoring"`
	Worker   WorkerConfig   `yaml:"worker"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with ECS detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	// Allow override via environment
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// DatabaseConfig holds the PostgreSQL connection settings for the
// rollup store.
type DatabaseConfig struct {
	URL          string `yaml:"url"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// RedisConfig holds the cache connection settings. Redis is optional;
// with an empty URL the service runs uncached.
type RedisConfig struct {
	URL        string `yaml:"url"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// TTL returns the configured cache TTL as a duration
func (c RedisConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// ArchiveConfig holds snapshot archive configuration
type ArchiveConfig struct {
	Type          string `yaml:"type"` // "dynamodb" or "local"
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	LocalPath     string `yaml:"local_path"`
	RetentionDays int    `yaml:"retention_days"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c ArchiveConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return "" // Use default credential chain (IAM role)
		}
		return envProfile
	}
	// On ECS/Lambda, don't use a profile - use IAM role
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "" // Running on ECS or Lambda, use IAM role
	}
	return c.AWSProfile
}

// ScoringConfig holds health score weights and deliverability limits.
// Zero values fall back to the stock limits in Load.
type ScoringConfig struct {
	OpenWeight        float64 `yaml:"open_weight"`
	ClickWeight       float64 `yaml:"click_weight"`
	ReplyWeight       float64 `yaml:"reply_weight"`
	BounceWarning     float64 `yaml:"bounce_warning"`
	BounceCritical    float64 `yaml:"bounce_critical"`
	ComplaintWarning  float64 `yaml:"complaint_warning"`
	ComplaintCritical float64 `yaml:"complaint_critical"`
	OpenPositive      float64 `yaml:"open_positive"`
}

// WorkerConfig holds snapshot worker configuration
type WorkerConfig struct {
	Enabled         bool     `yaml:"enabled"`
	IntervalMinutes int      `yaml:"interval_minutes"`
	Kinds           []string `yaml:"kinds"`
}

// Interval returns the worker tick interval as a duration
func (c WorkerConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// LoggingConfig holds log level and redaction settings
type LoggingConfig struct {
	Level     string `yaml:"level"`
	RedactPII *bool  `yaml:"redact_pii"`
}

// RedactEnabled reports whether PII redaction is on. Defaults to on
// when the key is absent.
func (c LoggingConfig) RedactEnabled() bool {
	if c.RedactPII == nil {
		return true
	}
	return *c.RedactPII
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Redis.TTLSeconds == 0 {
		cfg.Redis.TTLSeconds = 300
	}
	if cfg.Archive.Type == "" {
		cfg.Archive.Type = "local"
	}
	if cfg.Archive.LocalPath == "" {
		cfg.Archive.LocalPath = "./data"
	}
	if cfg.Archive.DynamoDBTable == "" {
		cfg.Archive.DynamoDBTable = "outreach-insight-snapshots"
	}
	if cfg.Archive.AWSRegion == "" {
		cfg.Archive.AWSRegion = "us-west-2"
	}
	if cfg.Archive.RetentionDays == 0 {
		cfg.Archive.RetentionDays = 90
	}
	if cfg.Scoring.OpenWeight == 0 && cfg.Scoring.ClickWeight == 0 && cfg.Scoring.ReplyWeight == 0 {
		cfg.Scoring.OpenWeight = 0.3
		cfg.Scoring.ClickWeight = 0.4
		cfg.Scoring.ReplyWeight = 0.3
	}
	if cfg.Scoring.BounceWarning == 0 {
		cfg.Scoring.BounceWarning = 0.05
	}
	if cfg.Scoring.BounceCritical == 0 {
		cfg.Scoring.BounceCritical = 0.10
	}
	if cfg.Scoring.ComplaintWarning == 0 {
		cfg.Scoring.ComplaintWarning = 0.001
	}
	if cfg.Scoring.ComplaintCritical == 0 {
		cfg.Scoring.ComplaintCritical = 0.003
	}
	if cfg.Scoring.OpenPositive == 0 {
		cfg.Scoring.OpenPositive = 0.25
	}
	if cfg.Worker.IntervalMinutes == 0 {
		cfg.Worker.IntervalMinutes = 60
	}
	if len(cfg.Worker.Kinds) == 0 {
		cfg.Worker.Kinds = []string{"campaign", "lead", "domain", "mailbox", "template"}
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables if present
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Database.URL = dbURL
	}
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cfg.Redis.URL = redisURL
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil {
			cfg.Redis.TTLSeconds = ttl
		}
	}
	if v := os.Getenv("ARCHIVE_TYPE"); v != "" {
		cfg.Archive.Type = v
	}
	if v := os.Getenv("ARCHIVE_DYNAMODB_TABLE"); v != "" {
		cfg.Archive.DynamoDBTable = v
	}
	if v := os.Getenv("ARCHIVE_AWS_REGION"); v != "" {
		cfg.Archive.AWSRegion = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return cfg, nil
}
