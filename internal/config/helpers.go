package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// GetServerAddress returns the HTTP listen address (host:port)
func (c *Config) GetServerAddress() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.HTTPPort))
}

// ReportCacheEnabled reports whether ended-session reports are cached
func (s StoreConfig) ReportCacheEnabled() bool {
	return s.ReportCacheTTL > 0
}

// String returns a short description safe for logging (no credentials)
func (s StoreConfig) String() string {
	if s.Type == "redis" {
		return fmt.Sprintf("redis(%s db=%d prefix=%s)", redisHost(s.RedisURL), s.RedisDB, s.KeyPrefix)
	}
	return fmt.Sprintf("%s(prefix=%s)", s.Type, s.KeyPrefix)
}

// redisHost strips the scheme, userinfo and path from a Redis URL. Plain host:port
// addresses are returned as given.
func redisHost(raw string) string {
	if !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	return u.Host
}
