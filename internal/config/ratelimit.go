package config

import (
    "os"
    "strconv"
    "time"
)

// RateLimitConfig controls throttling of the authentication endpoints.
// Backend selects the limiter implementation: "memory" keeps a best-effort
// per-process window (the default; under-counts when horizontally scaled),
// "redis" shares a token bucket across instances.
type RateLimitConfig struct {
    Enabled        bool
    Backend        string
    MaxRequests    int           // memory backend: requests allowed per window
    Window         time.Duration // memory backend: fixed window length
    Capacity       int           // redis backend: bucket capacity
    RefillTokens   int           // redis backend: tokens added per interval
    RefillInterval time.Duration // redis backend: refill interval
    TTL            time.Duration // redis backend: key expiry
    Prefix         string
    Debug          bool
}

func LoadRateLimitConfig() RateLimitConfig {
    def := RateLimitConfig{
        Enabled:        envBool("RATE_LIMIT_ENABLED", true),
        Backend:        envStr("RATE_LIMIT_BACKEND", "memory"),
        MaxRequests:    envInt("RATE_LIMIT_MAX_REQUESTS", 5),
        Window:         envDur("RATE_LIMIT_WINDOW", 15*time.Minute),
        Capacity:       envInt("RATE_LIMIT_CAPACITY", 60),
        RefillTokens:   envInt("RATE_LIMIT_REFILL_TOKENS", 1),
        RefillInterval: envDur("RATE_LIMIT_REFILL_INTERVAL", time.Second),
        TTL:            envDur("RATE_LIMIT_TTL", 10*time.Minute),
        Prefix:         envStr("RATE_LIMIT_PREFIX", "rl"),
        Debug:          envBool("RATE_LIMIT_DEBUG", false),
    }
    if def.MaxRequests < 1 { def.MaxRequests = 1 }
    if def.Window <= 0 { def.Window = time.Minute }
    if def.Capacity < 1 { def.Capacity = 1 }
    if def.RefillTokens < 1 { def.RefillTokens = 1 }
    if def.RefillInterval <= 0 { def.RefillInterval = time.Second }
    minTTL := 5 * def.RefillInterval
    if def.TTL < minTTL { def.TTL = minTTL }
    return def
}

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
