package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides (CLASSPULSE_SERVER_HTTP_PORT, ...)
const EnvPrefix = "CLASSPULSE"

// searchPaths are tried in order when no config file is given
var searchPaths = []string{".", "./configs", "./config", "/etc/classpulse"}

// Load reads configPath, or config.yaml from searchPaths, layers CLASSPULSE_* environment
// variables on top and validates the result. A missing default config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range searchPaths {
			v.AddConfigPath(p)
		}
	}

	for key, value := range defaultValues(DefaultConfig()) {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// defaultValues flattens d into viper keys. Every key must be registered so
// AutomaticEnv can override it even when the config file omits it.
func defaultValues(d *Config) map[string]interface{} {
	return map[string]interface{}{
		"server.host":             d.Server.Host,
		"server.http_port":        d.Server.HTTPPort,
		"server.shutdown_timeout": d.Server.ShutdownTimeout.String(),

		"auth.enabled":  d.Auth.Enabled,
		"auth.api_keys": []string{},

		"logging.level":       d.Logging.Level,
		"logging.format":      d.Logging.Format,
		"logging.output_path": d.Logging.OutputPath,
		"logging.time_format": d.Logging.TimeFormat,

		"queue.type":                 d.Queue.Type,
		"queue.url":                  d.Queue.URL,
		"queue.subject":              d.Queue.Subject,
		"queue.redis_stream":         d.Queue.RedisStream,
		"queue.redis_group":          d.Queue.RedisGroup,
		"queue.redis_max_len":        d.Queue.RedisMaxLen,
		"queue.nats_ack_wait":        d.Queue.NATSAckWait.String(),
		"queue.nats_max_ack_pending": d.Queue.NATSMaxAckPending,
		"queue.kafka_brokers":        d.Queue.KafkaBrokers,
		"queue.kafka_group_id":       d.Queue.KafkaGroupID,

		"store.type":             d.Store.Type,
		"store.redis_url":        d.Store.RedisURL,
		"store.redis_db":         d.Store.RedisDB,
		"store.key_prefix":       d.Store.KeyPrefix,
		"store.report_cache_ttl": d.Store.ReportCacheTTL.String(),

		"analytics.drop_threshold":    d.Analytics.DropThreshold,
		"analytics.peak_window":       d.Analytics.PeakWindow,
		"analytics.min_sustained_sec": d.Analytics.MinSustainedSec,
		"analytics.top_dropoffs":      d.Analytics.TopDropoffs,
		"analytics.top_peaks":         d.Analytics.TopPeaks,
		"analytics.top_spikes":        d.Analytics.TopSpikes,

		"ingest.enabled": d.Ingest.Enabled,
	}
}

// LoadOrDefault is Load, falling back to DefaultConfig on any error
func LoadOrDefault(configPath string) *Config {
	if cfg, err := Load(configPath); err == nil {
		return cfg
	}
	return DefaultConfig()
}

// DefaultConfig returns the built-in configuration: a local NATS queue, the memory
// store and the standard engine thresholds.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			HTTPPort:        8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			OutputPath: "stdout",
			TimeFormat: "RFC3339",
		},
		Queue: QueueConfig{
			Type:              "nats",
			URL:               "nats://localhost:4222",
			Subject:           "classpulse.engagement.samples",
			RedisStream:       "classpulse",
			RedisGroup:        "classpulse-group",
			RedisMaxLen:       100000,
			NATSAckWait:       30 * time.Second,
			NATSMaxAckPending: 100,
			KafkaBrokers:      []string{"localhost:9092"},
			KafkaGroupID:      "classpulse-ingest",
		},
		Store: StoreConfig{
			Type:           "memory",
			RedisURL:       "localhost:6379",
			KeyPrefix:      "classpulse",
			ReportCacheTTL: 15 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			DropThreshold:   0.3,
			PeakWindow:      5,
			MinSustainedSec: 60,
			TopDropoffs:     5,
			TopPeaks:        3,
			TopSpikes:       5,
		},
	}
}
