package middleware

import (
    "context"
    "log"
    "math"
    "net/http"
    "strconv"
    "sync"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/arisehq/arise-api/internal/config"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
    Allowed   bool
    Limit     int
    Remaining int
    Reset     time.Time
}

// Limiter throttles requests per identifier.  Two implementations exist:
// MemoryLimiter keeps a best-effort in-process window (a soft guard that
// under-counts when the service is horizontally scaled) and RedisLimiter
// shares a token bucket across instances.  Both sit behind the same
// interface so swapping backends is a config change.
type Limiter interface {
    Check(ctx context.Context, identifier string) Decision
}

// MemoryLimiter is a fixed-window counter keyed by identifier.  Expired
// entries are swept opportunistically once the map grows large.
type MemoryLimiter struct {
    mu      sync.Mutex
    max     int
    window  time.Duration
    entries map[string]*windowEntry
}

type windowEntry struct {
    count int
    reset time.Time
}

const sweepThreshold = 10000

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
    return &MemoryLimiter{max: max, window: window, entries: make(map[string]*windowEntry)}
}

func (l *MemoryLimiter) Check(_ context.Context, identifier string) Decision {
    now := time.Now()
    l.mu.Lock()
    defer l.mu.Unlock()

    if len(l.entries) > sweepThreshold {
        for k, e := range l.entries {
            if e.reset.Before(now) {
                delete(l.entries, k)
            }
        }
    }

    e, ok := l.entries[identifier]
    if !ok || e.reset.Before(now) {
        reset := now.Add(l.window)
        l.entries[identifier] = &windowEntry{count: 1, reset: reset}
        return Decision{Allowed: true, Limit: l.max, Remaining: l.max - 1, Reset: reset}
    }

    e.count++
    if e.count > l.max {
        return Decision{Allowed: false, Limit: l.max, Remaining: 0, Reset: e.reset}
    }
    return Decision{Allowed: true, Limit: l.max, Remaining: l.max - e.count, Reset: e.reset}
}

// RedisLimiter runs a token-bucket script server-side so the count is
// shared across instances.  Redis errors fail open: throttling is a guard,
// not a correctness mechanism, and an unavailable Redis must not take the
// auth endpoints down with it.
type RedisLimiter struct {
    cfg    config.RateLimitConfig
    rdb    *redis.Client
    script *redis.Script
}

func NewRedisLimiter(cfg config.RateLimitConfig, rdb *redis.Client) *RedisLimiter {
    script := redis.NewScript(`
        local key = KEYS[1]
        local now_ms = tonumber(ARGV[1])
        local capacity = tonumber(ARGV[2])
        local refill_tokens = tonumber(ARGV[3])
        local interval_ms = tonumber(ARGV[4])
        local ttl_seconds = tonumber(ARGV[5])

        local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
        local tokens = tonumber(state[1])
        local last_refill = tonumber(state[2])

        if tokens == nil or last_refill == nil then
            tokens = capacity
            last_refill = now_ms
        end

        if interval_ms > 0 and refill_tokens > 0 then
            local elapsed = math.max(0, now_ms - last_refill)
            local intervals = math.floor(elapsed / interval_ms)
            if intervals > 0 then
                tokens = math.min(capacity, tokens + (intervals * refill_tokens))
                last_refill = last_refill + (intervals * interval_ms)
            end
        end

        local allowed = 0
        local retry_after_ms = 0
        if tokens > 0 then
            allowed = 1
            tokens = tokens - 1
        else
            local until_next = interval_ms - (now_ms - last_refill)
            if until_next < 0 then until_next = 0 end
            retry_after_ms = until_next
        end

        redis.call('HMSET', key, 'tokens', tokens, 'last_refill_ms', last_refill, 'capacity', capacity)
        redis.call('EXPIRE', key, ttl_seconds)

        return { allowed, tokens, retry_after_ms }
    `)
    return &RedisLimiter{cfg: cfg, rdb: rdb, script: script}
}

func (l *RedisLimiter) Check(ctx context.Context, identifier string) Decision {
    open := Decision{Allowed: true, Limit: l.cfg.Capacity, Remaining: l.cfg.Capacity}
    if l.rdb == nil {
        return open
    }

    key := l.cfg.Prefix + ":" + identifier
    now := time.Now()
    vals, err := l.script.Run(ctx, l.rdb, []string{key},
        now.UnixMilli(),
        l.cfg.Capacity,
        l.cfg.RefillTokens,
        l.cfg.RefillInterval.Milliseconds(),
        int64(l.cfg.TTL/time.Second),
    ).Result()
    if err != nil {
        if l.cfg.Debug {
            log.Printf("[ratelimit] redis error for key=%s: %v", key, err)
        }
        return open
    }

    arr, ok := vals.([]interface{})
    if !ok || len(arr) != 3 {
        if l.cfg.Debug {
            log.Printf("[ratelimit] unexpected script result for key=%s: %#v", key, vals)
        }
        return open
    }
    allowed := asInt64(arr[0]) == 1
    remaining := asInt64(arr[1])
    retryMs := asInt64(arr[2])

    return Decision{
        Allowed:   allowed,
        Limit:     l.cfg.Capacity,
        Remaining: int(remaining),
        Reset:     now.Add(time.Duration(retryMs) * time.Millisecond),
    }
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64: return t
    case int32: return int64(t)
    case int: return int64(t)
    case float64: return int64(t)
    case float32: return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil { return n }
    }
    return 0
}

// RateLimit throttles requests keyed by client address.  It is applied to
// the authentication endpoints, which are the ones worth brute-forcing.
func RateLimit(l Limiter) echo.MiddlewareFunc {
    if l == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            d := l.Check(c.Request().Context(), ip)

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

            if !d.Allowed {
                secs := int(math.Ceil(time.Until(d.Reset).Seconds()))
                if secs < 0 {
                    secs = 0
                }
                c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
                return c.JSON(http.StatusTooManyRequests, echo.Map{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": secs,
                })
            }
            return next(c)
        }
    }
}
