package config

import (
	"fmt"
	"time"

	"github.com/classpulse/classpulse/internal/analytics/engagement"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Store     StoreConfig     `mapstructure:"store"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Ingest    IngestConfig    `mapstructure:"ingest"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// ServerConfig represents server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort        int           `mapstructure:"http_port"` // HTTP server port
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// QueueConfig represents message queue configuration for score ingestion
type QueueConfig struct {
	Type     string `mapstructure:"type"`    // Queue type: nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`     // Queue server URL (e.g., nats://localhost:4222, redis://localhost:6379)
	Subject  string `mapstructure:"subject"` // Subject/topic carrying engagement samples
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Redis-specific options
	RedisDB       int    `mapstructure:"redis_db"`       // Redis database number (default: 0)
	RedisStream   string `mapstructure:"redis_stream"`   // Redis stream prefix (default: "classpulse")
	RedisGroup    string `mapstructure:"redis_group"`    // Redis consumer group (default: "classpulse-group")
	RedisConsumer string `mapstructure:"redis_consumer"` // Redis consumer name (default: hostname)
	RedisMaxLen   int64  `mapstructure:"redis_max_len"`  // Approximate stream cap (default: 100000)

	// NATS-specific options
	NATSAckWait       time.Duration `mapstructure:"nats_ack_wait"`        // Redelivery delay (default: 30s)
	NATSMaxAckPending int           `mapstructure:"nats_max_ack_pending"` // In-flight messages (default: 100)

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaGroupID string   `mapstructure:"kafka_group_id"`
}

// StoreConfig represents the session/sample store configuration
type StoreConfig struct {
	Type           string        `mapstructure:"type"` // memory (default) or redis
	RedisURL       string        `mapstructure:"redis_url"`
	RedisPassword  string        `mapstructure:"redis_password"`
	RedisDB        int           `mapstructure:"redis_db"`
	KeyPrefix      string        `mapstructure:"key_prefix"`
	ReportCacheTTL time.Duration `mapstructure:"report_cache_ttl"` // 0 disables the report cache
}

// AnalyticsConfig holds the tunable engine parameters
type AnalyticsConfig struct {
	DropThreshold   float64 `mapstructure:"drop_threshold"`
	PeakWindow      int     `mapstructure:"peak_window"`
	MinSustainedSec int     `mapstructure:"min_sustained_sec"`
	TopDropoffs     int     `mapstructure:"top_dropoffs"`
	TopPeaks        int     `mapstructure:"top_peaks"`
	TopSpikes       int     `mapstructure:"top_spikes"`
}

// IngestConfig controls the queue consumer
type IngestConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, UnixMs, etc
}

// EngineConfig converts the analytics section into an engine configuration
func (c AnalyticsConfig) EngineConfig() engagement.Config {
	return engagement.Config{
		DropThreshold:   c.DropThreshold,
		PeakWindow:      c.PeakWindow,
		MinSustainedSec: c.MinSustainedSec,
		TopDropoffs:     c.TopDropoffs,
		TopPeaks:        c.TopPeaks,
		TopSpikes:       c.TopSpikes,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.Analytics.Validate(); err != nil {
		return fmt.Errorf("analytics config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}

	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout cannot be negative")
	}

	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	switch c.Type {
	case "", "nats", "redis", "kafka", "memory":
	default:
		return fmt.Errorf("queue.type must be one of: nats, redis, kafka, memory")
	}

	if c.Subject == "" {
		return fmt.Errorf("queue.subject is required")
	}

	return nil
}

// Validate validates store configuration
func (c *StoreConfig) Validate() error {
	switch c.Type {
	case "memory":
	case "redis":
		if c.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for redis store")
		}
	default:
		return fmt.Errorf("store.type must be 'memory' or 'redis'")
	}

	if c.KeyPrefix == "" {
		return fmt.Errorf("store.key_prefix is required")
	}

	if c.ReportCacheTTL < 0 {
		return fmt.Errorf("store.report_cache_ttl cannot be negative")
	}

	return nil
}

// Validate validates analytics configuration
func (c *AnalyticsConfig) Validate() error {
	if c.DropThreshold < 0 || c.DropThreshold > 1 {
		return fmt.Errorf("analytics.drop_threshold must be within [0, 1]")
	}

	if c.PeakWindow < 0 || c.MinSustainedSec < 0 {
		return fmt.Errorf("analytics.peak_window and analytics.min_sustained_sec cannot be negative")
	}

	if c.TopDropoffs < 0 || c.TopPeaks < 0 || c.TopSpikes < 0 {
		return fmt.Errorf("analytics top_* limits cannot be negative")
	}

	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
