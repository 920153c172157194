// Package config loads and validates the Eastern ERP backend configuration
// using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the EERP_ prefix (e.g., EERP_DATABASE_HOST
// overrides database.host in the YAML). The same binary runs with a config.yaml
// in local development and with pure environment variables in containerized
// deployments.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Evidence  EvidenceConfig  `mapstructure:"evidence"`
	Companies []string        `mapstructure:"companies"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Jobs      JobsConfig      `mapstructure:"jobs"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	BaseURL      string        `mapstructure:"base_url"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GetAddress returns the host:port listen address for the HTTP server
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// GetDSN builds the PostgreSQL connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// StorageConfig holds evidence storage backend configuration
type StorageConfig struct {
	DefaultBackend string             `mapstructure:"default_backend"`
	S3             S3StorageConfig    `mapstructure:"s3"`
	Local          LocalStorageConfig `mapstructure:"local"`
}

// S3StorageConfig holds S3-compatible storage configuration
type S3StorageConfig struct {
	// Endpoint is the S3-compatible endpoint URL (optional, for MinIO and
	// other S3-compatible services)
	Endpoint string `mapstructure:"endpoint"`
	// Region is the AWS region
	Region string `mapstructure:"region"`
	// Bucket is the S3 bucket name
	Bucket string `mapstructure:"bucket"`

	// Authentication method: "default", "static", "assume_role"
	// - "default": AWS default credential chain (env vars, shared config, IAM role)
	// - "static": explicit access key and secret key
	// - "assume_role": assume an IAM role (optionally with external ID)
	AuthMethod string `mapstructure:"auth_method"`

	// Static credentials (when auth_method is "static" or empty)
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`

	// AssumeRole configuration (when auth_method is "assume_role")
	RoleARN         string `mapstructure:"role_arn"`
	RoleSessionName string `mapstructure:"role_session_name"`
	ExternalID      string `mapstructure:"external_id"`

	// URLTTL is how long pre-signed evidence URLs stay valid
	URLTTL time.Duration `mapstructure:"url_ttl"`
}

// LocalStorageConfig holds local filesystem storage configuration
type LocalStorageConfig struct {
	BasePath      string `mapstructure:"base_path"`
	ServeDirectly bool   `mapstructure:"serve_directly"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	// SessionTTL is how long issued JWT sessions stay valid
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// BootstrapAdminEmail is the admin account seeded on first run
	BootstrapAdminEmail string `mapstructure:"bootstrap_admin_email"`
}

// EvidenceConfig bounds evidence image uploads. The per-item cap and size
// ceiling mirror what the application has always enforced in the UI; the
// backend enforces them too.
type EvidenceConfig struct {
	MaxPerItem     int      `mapstructure:"max_per_item"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes"`
	AllowedTypes   []string `mapstructure:"allowed_types"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORS         CORSConfig         `mapstructure:"cors"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
	TLS          TLSConfig          `mapstructure:"tls"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// TLSConfig holds TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Profiling ProfilingConfig `mapstructure:"profiling"`
}

// MetricsConfig holds Prometheus metrics configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// ProfilingConfig holds pprof configuration
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// JobsConfig holds background job configuration
type JobsConfig struct {
	StaleDraft StaleDraftConfig `mapstructure:"stale_draft"`
}

// StaleDraftConfig configures the stale-draft notifier job
type StaleDraftConfig struct {
	Enabled            bool `mapstructure:"enabled"`
	CheckIntervalHours int  `mapstructure:"check_interval_hours"`
	ThresholdDays      int  `mapstructure:"threshold_days"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/eastern-erp")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("EERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind environment variables for nested structures.
	// AutomaticEnv() alone does not cover keys read through Unmarshal().
	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand ${VAR} references in sensitive fields so secrets can live in
	// infrastructure-managed environment variables.
	cfg.Database.Password = expandEnv(cfg.Database.Password)
	cfg.Storage.S3.AccessKeyID = expandEnv(cfg.Storage.S3.AccessKeyID)
	cfg.Storage.S3.SecretAccessKey = expandEnv(cfg.Storage.S3.SecretAccessKey)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "eastern_erp")
	v.SetDefault("database.user", "erp")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Storage defaults
	v.SetDefault("storage.default_backend", "local")
	v.SetDefault("storage.local.base_path", "./storage")
	v.SetDefault("storage.local.serve_directly", true)
	v.SetDefault("storage.s3.auth_method", "default")
	v.SetDefault("storage.s3.url_ttl", "1h")

	// Auth defaults
	v.SetDefault("auth.session_ttl", "12h")
	v.SetDefault("auth.bootstrap_admin_email", "admin@eastern-erp.local")

	// Evidence defaults: 5 images per item, 5 MB per image
	v.SetDefault("evidence.max_per_item", 5)
	v.SetDefault("evidence.max_upload_bytes", 5*1024*1024)
	v.SetDefault("evidence.allowed_types", []string{"image/jpeg", "image/png", "image/webp"})

	// The two manufacturing entities audits belong to
	v.SetDefault("companies", []string{"Eastern Mills", "Eastern Home"})

	// Security defaults
	v.SetDefault("security.cors.allowed_origins", []string{"*"})
	v.SetDefault("security.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 200)
	v.SetDefault("security.rate_limiting.burst", 50)
	v.SetDefault("security.tls.enabled", false)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
	v.SetDefault("telemetry.profiling.enabled", false)
	v.SetDefault("telemetry.profiling.port", 6060)

	// Jobs defaults
	v.SetDefault("jobs.stale_draft.enabled", true)
	v.SetDefault("jobs.stale_draft.check_interval_hours", 24)
	v.SetDefault("jobs.stale_draft.threshold_days", 14)
}

// bindEnvVars explicitly binds nested keys to environment variables
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.base_url",
		"server.read_timeout",
		"server.write_timeout",

		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		// Storage
		"storage.default_backend",
		"storage.s3.endpoint",
		"storage.s3.region",
		"storage.s3.bucket",
		"storage.s3.auth_method",
		"storage.s3.access_key_id",
		"storage.s3.secret_access_key",
		"storage.s3.role_arn",
		"storage.s3.role_session_name",
		"storage.s3.external_id",
		"storage.s3.url_ttl",
		"storage.local.base_path",
		"storage.local.serve_directly",

		// Auth
		"auth.session_ttl",
		"auth.bootstrap_admin_email",

		// Evidence
		"evidence.max_per_item",
		"evidence.max_upload_bytes",
		"evidence.allowed_types",

		// Companies
		"companies",

		// Security
		"security.cors.allowed_origins",
		"security.cors.allowed_methods",
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",
		"security.tls.enabled",
		"security.tls.cert_file",
		"security.tls.key_file",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
		"telemetry.profiling.enabled",
		"telemetry.profiling.port",

		// Jobs
		"jobs.stale_draft.enabled",
		"jobs.stale_draft.check_interval_hours",
		"jobs.stale_draft.threshold_days",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// expandEnv expands ${VAR} or $VAR references in a string
func expandEnv(s string) string {
	if strings.Contains(s, "$") {
		return os.ExpandEnv(s)
	}
	return s
}

// Validate checks the configuration for contradictions an operator should
// hear about at startup rather than at first request
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}

	switch c.Storage.DefaultBackend {
	case "local":
		if c.Storage.Local.BasePath == "" {
			return fmt.Errorf("storage.local.base_path is required for the local backend")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("storage.s3.bucket is required for the s3 backend")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("storage.s3.region is required for the s3 backend")
		}
	default:
		return fmt.Errorf("unsupported storage.default_backend: %s (must be 'local' or 's3')", c.Storage.DefaultBackend)
	}

	if c.Evidence.MaxPerItem < 1 {
		return fmt.Errorf("evidence.max_per_item must be at least 1")
	}
	if c.Evidence.MaxUploadBytes < 1 {
		return fmt.Errorf("evidence.max_upload_bytes must be positive")
	}
	if len(c.Companies) == 0 {
		return fmt.Errorf("companies must list at least one entity")
	}

	if c.Security.TLS.Enabled {
		if c.Security.TLS.CertFile == "" || c.Security.TLS.KeyFile == "" {
			return fmt.Errorf("security.tls.cert_file and key_file are required when TLS is enabled")
		}
	}

	return nil
}
