package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the entire application configuration
type Config struct {
	Fetch       FetchConfig       `mapstructure:"fetch"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Maintenance MaintenanceConfig `mapstructure:"maintenance"`
}

// FetchConfig contains fetch pipeline settings
type FetchConfig struct {
	WorkDir             string   `mapstructure:"work_dir"`
	Timeout             string   `mapstructure:"timeout"`
	VerifyTLS           bool     `mapstructure:"verify_tls"`
	FollowRedirects     bool     `mapstructure:"follow_redirects"`
	MaxContentLength    int64    `mapstructure:"max_content_length"`
	AllowedContentTypes []string `mapstructure:"allowed_content_types"`
}

// HTTPConfig contains HTTP server configuration
type HTTPConfig struct {
	BindAddr      string `mapstructure:"bind_addr"`
	FetchInterval string `mapstructure:"fetch_interval"`
	ReadTimeout   string `mapstructure:"read_timeout"`
	WriteTimeout  string `mapstructure:"write_timeout"`
	IdleTimeout   string `mapstructure:"idle_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// MaintenanceConfig contains periodic cleanup settings
type MaintenanceConfig struct {
	CleanupInterval string `mapstructure:"cleanup_interval"`
	TempFileMaxAge  string `mapstructure:"temp_file_max_age"`
	HistoryMaxAge   string `mapstructure:"history_max_age"`
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Set defaults
	viper.SetDefault("fetch.work_dir", "/var/lib/resource-fetcher")
	viper.SetDefault("fetch.timeout", "3050ms")
	viper.SetDefault("fetch.verify_tls", true)
	viper.SetDefault("fetch.follow_redirects", true)
	viper.SetDefault("fetch.max_content_length", 20480000)
	viper.SetDefault("fetch.allowed_content_types", []string{"text/plain", "text/csv", "application/json"})
	viper.SetDefault("http.bind_addr", "0.0.0.0:8080")
	viper.SetDefault("http.fetch_interval", "0s")
	viper.SetDefault("http.read_timeout", "30s")
	viper.SetDefault("http.write_timeout", "30s")
	viper.SetDefault("http.idle_timeout", "60s")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("database.path", "")
	viper.SetDefault("maintenance.cleanup_interval", "1h")
	viper.SetDefault("maintenance.temp_file_max_age", "24h")
	viper.SetDefault("maintenance.history_max_age", "720h")

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Fetch.WorkDir == "" {
		return fmt.Errorf("fetch.work_dir is required")
	}
	if _, err := time.ParseDuration(c.Fetch.Timeout); err != nil {
		return fmt.Errorf("invalid fetch.timeout: %w", err)
	}
	if c.Fetch.MaxContentLength <= 0 {
		return fmt.Errorf("fetch.max_content_length must be positive")
	}
	if len(c.Fetch.AllowedContentTypes) == 0 {
		return fmt.Errorf("fetch.allowed_content_types must not be empty")
	}

	if _, err := time.ParseDuration(c.HTTP.FetchInterval); err != nil {
		return fmt.Errorf("invalid http.fetch_interval: %w", err)
	}

	if _, err := time.ParseDuration(c.Maintenance.CleanupInterval); err != nil {
		return fmt.Errorf("invalid maintenance.cleanup_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.Maintenance.TempFileMaxAge); err != nil {
		return fmt.Errorf("invalid maintenance.temp_file_max_age: %w", err)
	}
	if _, err := time.ParseDuration(c.Maintenance.HistoryMaxAge); err != nil {
		return fmt.Errorf("invalid maintenance.history_max_age: %w", err)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		// Valid levels
	default:
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "text":
		// Valid formats
	default:
		return fmt.Errorf("invalid logging.format: %s", c.Logging.Format)
	}

	return nil
}

// GetTimeout returns the fetch timeout as time.Duration
func (c *FetchConfig) GetTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	if d == 0 {
		return 3050 * time.Millisecond
	}
	return d
}

// GetFetchInterval returns the fetch rate-limit interval as time.Duration
func (c *HTTPConfig) GetFetchInterval() time.Duration {
	d, _ := time.ParseDuration(c.FetchInterval)
	return d
}

// GetReadTimeout returns the read timeout as time.Duration
func (c *HTTPConfig) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetWriteTimeout returns the write timeout as time.Duration
func (c *HTTPConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	if d == 0 {
		return 30 * time.Second
	}
	return d
}

// GetIdleTimeout returns the idle timeout as time.Duration
func (c *HTTPConfig) GetIdleTimeout() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	if d == 0 {
		return 60 * time.Second
	}
	return d
}

// GetCleanupInterval returns the maintenance interval as time.Duration
func (c *MaintenanceConfig) GetCleanupInterval() time.Duration {
	d, _ := time.ParseDuration(c.CleanupInterval)
	if d == 0 {
		return time.Hour
	}
	return d
}

// GetTempFileMaxAge returns the temp file max age as time.Duration
func (c *MaintenanceConfig) GetTempFileMaxAge() time.Duration {
	d, _ := time.ParseDuration(c.TempFileMaxAge)
	if d == 0 {
		return 24 * time.Hour
	}
	return d
}

// GetHistoryMaxAge returns the history max age as time.Duration
func (c *MaintenanceConfig) GetHistoryMaxAge() time.Duration {
	d, _ := time.ParseDuration(c.HistoryMaxAge)
	if d == 0 {
		return 30 * 24 * time.Hour
	}
	return d
}
