package store

import (
	"fmt"
	"strings"

	"github.com/classpulse/classpulse/internal/config"
	"github.com/classpulse/classpulse/internal/utils"
)

// New creates the configured store together with its report cache.
// The Redis cache shares the store's client; closing the store closes both.
func New(cfg config.StoreConfig) (Store, ReportCache, error) {
	storeType := utils.StoreType(strings.ToLower(cfg.Type))

	switch storeType {
	case utils.StoreTypeMemory, "":
		var cache ReportCache = NopReportCache{}
		if cfg.ReportCacheEnabled() {
			cache = NewMemoryReportCache(cfg.ReportCacheTTL)
		}
		return NewMemoryStore(), cache, nil

	case utils.StoreTypeRedis:
		s, err := NewRedisStore(RedisConfig{
			URL:       cfg.RedisURL,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		var cache ReportCache = NopReportCache{}
		if cfg.ReportCacheEnabled() {
			cache = NewRedisReportCache(s.client, s.prefix, cfg.ReportCacheTTL)
		}
		return s, cache, nil

	default:
		return nil, nil, fmt.Errorf("unsupported store type: %s (supported: memory, redis)", storeType)
	}
}
