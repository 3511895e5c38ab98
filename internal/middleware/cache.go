package middleware

import (
    "context"
    "crypto/sha1"
    "encoding/hex"
    "net/http"
    "sort"
    "strings"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/arisehq/arise-api/internal/config"
)

// catalogWriter tees the response body so a successful catalog render can
// be stored after it has been streamed to the client.  Once the body
// exceeds max the capture is abandoned; the response itself is unaffected.
type catalogWriter struct {
    http.ResponseWriter
    status int
    body   []byte
    max    int
    over   bool
}

func (w *catalogWriter) WriteHeader(code int) {
    w.status = code
    w.ResponseWriter.WriteHeader(code)
}

func (w *catalogWriter) Write(b []byte) (int, error) {
    if !w.over {
        if len(w.body)+len(b) <= w.max {
            w.body = append(w.body, b...)
        } else {
            w.over = true
            w.body = nil
        }
    }
    return w.ResponseWriter.Write(b)
}

// catalogCacheKey hashes the matched route and its query parameters in
// sorted order, so ?filter=b&search=a and ?search=a&filter=b share an
// entry.
func catalogCacheKey(prefix string, c echo.Context) string {
    q := c.Request().URL.Query()
    keys := make([]string, 0, len(q))
    for k := range q {
        keys = append(keys, k)
    }
    sort.Strings(keys)

    var sb strings.Builder
    sb.WriteString(c.Path())
    for _, k := range keys {
        vals := q[k]
        sort.Strings(vals)
        for _, v := range vals {
            sb.WriteByte('&')
            sb.WriteString(k)
            sb.WriteByte('=')
            sb.WriteString(v)
        }
    }
    sum := sha1.Sum([]byte(sb.String()))
    return prefix + ":" + hex.EncodeToString(sum[:])
}

// NewRedisCache serves repeated catalog reads from Redis.  Only GET
// requests participate and only 200 responses are stored.  The catalog
// routes always render JSON, so an entry holds the raw body alone and hits
// are rebuilt with a fixed content type.  Without a Redis client the
// middleware is a no-op.
func NewRedisCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc {
            return func(c echo.Context) error { return next(c) }
        }
    }
    ttl := cfg.TTL
    if ttl <= 0 {
        ttl = time.Minute
    }
    maxBody := cfg.MaxBodyBytes
    if maxBody <= 0 {
        maxBody = 1 << 20
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }

            ctx := c.Request().Context()
            key := catalogCacheKey(cfg.Prefix, c)

            if body, err := rdb.Get(ctx, key).Bytes(); err == nil {
                c.Response().Header().Set("X-Cache", "HIT")
                return c.JSONBlob(http.StatusOK, body)
            }

            w := &catalogWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, max: maxBody}
            c.Response().Writer = w
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }

            if w.status == http.StatusOK && !w.over && len(w.body) > 0 {
                // The request context may already be done; storing the entry
                // is independent of the response lifecycle.
                _ = rdb.SetEx(context.Background(), key, w.body, ttl).Err()
            }
            return nil
        }
    }
}
