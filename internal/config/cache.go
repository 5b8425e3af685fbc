package config

import (
    "os"
    "strconv"
    "strings"
    "time"
)

// CacheConfig defines settings for the response cache middleware that sits
// in front of GET /athletes/:id. When Enabled is false or no Redis client
// is configured, caching is disabled and requests go straight to Strava.
// Methods lists the HTTP methods to cache. TTL defines the lifetime of
// cache entries; it should stay well below the sweep interval so cached
// listings do not hide fresh remediations for long.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string
    Prefix       string
    MaxBodyBytes int
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      getenv("CACHE_ENABLED", "true") == "true",
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          parseDur(getenv("CACHE_TTL", "30s")),
        KeyStrategy:  getenv("CACHE_KEY_STRATEGY", "route_query"),
        Prefix:       getenv("CACHE_PREFIX", "athletes"),
        MaxBodyBytes: atoi(getenv("CACHE_MAX_BODY_BYTES", "1048576")),
    }
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range strings.Split(s, ",") {
        p = strings.TrimSpace(strings.ToUpper(p))
        if p != "" {
            m[p] = true
        }
    }
    return m
}

// Helper functions shared with config.go and ratelimit.go
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
