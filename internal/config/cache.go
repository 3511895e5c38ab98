package config

import "time"

// CacheConfig controls the Redis response cache in front of the public
// assessment catalog.  The catalog changes only through the admin
// endpoints, so a short TTL is plenty; MaxBodyBytes stops an unexpectedly
// large render from being stored at all.
type CacheConfig struct {
    Enabled      bool
    TTL          time.Duration
    Prefix       string
    MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        TTL:          envDur("CACHE_TTL", time.Minute),
        Prefix:       envStr("CACHE_PREFIX", "catalog"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
}
