// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Auth       AuthConfig
	Ingest     IngestConfig
	Redis      RedisConfig
	Monitoring MonitoringConfig
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	TimescaleDB PostgresConfig `mapstructure:"timescaledb"`
	AppDB       PostgresConfig `mapstructure:"postgres_app"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// AuthConfig carries the HMAC key used to verify customer session tokens.
// Token issuance happens in the login service; the hub only verifies.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// IngestConfig carries the shared integration key for the external-id
// ingestion path. Loaded once at startup, never mutated at runtime.
// RetentionDays of 0 keeps readings indefinitely.
type IngestConfig struct {
	IntegrationKey string        `mapstructure:"integration_key"`
	DeviceCacheTTL time.Duration `mapstructure:"device_cache_ttl"`
	RetentionDays  int           `mapstructure:"retention_days"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MonitoringConfig struct {
	PrometheusPort     int    `mapstructure:"prometheus_port"`
	LogLevel           string `mapstructure:"log_level"`
	PrometheusEndpoint string `mapstructure:"prometheus_endpoint"`
	LokiEndpoint       string `mapstructure:"loki_endpoint"`
}

// Load initializes configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetEnvPrefix("PULSEHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Load config file if exists
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.timescaledb.sslmode", "disable")
	viper.SetDefault("database.postgres_app.sslmode", "disable")

	// Ingest defaults
	viper.SetDefault("ingest.device_cache_ttl", "5m")
	viper.SetDefault("ingest.retention_days", 0)

	// Redis defaults
	viper.SetDefault("redis.db", 0)

	// Monitoring defaults
	viper.SetDefault("monitoring.prometheus_port", 9090)
	viper.SetDefault("monitoring.log_level", "info")
	viper.SetDefault("monitoring.prometheus_endpoint", "http://localhost:9090")
	viper.SetDefault("monitoring.loki_endpoint", "http://localhost:3100")
}

func validateConfig(config *Config) error {
	if config.Database.TimescaleDB.Host == "" {
		return fmt.Errorf("timescaledb host is required")
	}
	if config.Database.AppDB.Host == "" {
		return fmt.Errorf("postgres app host is required")
	}
	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("auth jwt_secret is required")
	}
	// An empty integration key disables the shared-key ingestion path
	// rather than failing startup; per-device secrets still work.
	return nil
}
