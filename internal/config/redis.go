package config

import (
    "context"
    "os"
    "time"

    "github.com/redis/go-redis/v9"
)

// NewRedisClient connects to the Redis instance backing the shared rate
// limiter and the catalog response cache.  REDIS_URL takes precedence and
// accepts the full redis:// or rediss:// form (TLS, password and database
// number included); otherwise the address is assembled from
// REDIS_HOST/REDIS_PORT with REDIS_PASSWORD and REDIS_DB.  Returns nil when
// no server answers the startup ping: both consumers degrade on their own
// (in-process limiting, no caching) instead of failing the boot.
func NewRedisClient() *redis.Client {
    var opts *redis.Options
    if raw := os.Getenv("REDIS_URL"); raw != "" {
        parsed, err := redis.ParseURL(raw)
        if err != nil {
            return nil
        }
        opts = parsed
    } else {
        opts = &redis.Options{
            Addr:     envStr("REDIS_HOST", "localhost") + ":" + envStr("REDIS_PORT", "6379"),
            Password: os.Getenv("REDIS_PASSWORD"),
            DB:       envInt("REDIS_DB", 0),
        }
    }
    opts.DialTimeout = 2 * time.Second
    opts.PoolSize = envInt("REDIS_POOL_SIZE", 10)

    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        _ = client.Close()
        return nil
    }
    return client
}
