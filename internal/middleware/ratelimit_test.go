package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiterWindow(t *testing.T) {
	l := NewMemoryLimiter(2, 50*time.Millisecond)
	ctx := context.Background()

	d := l.Check(ctx, "1.2.3.4")
	require.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)

	d = l.Check(ctx, "1.2.3.4")
	require.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d = l.Check(ctx, "1.2.3.4")
	require.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.True(t, d.Reset.After(time.Now()))

	// A fresh window admits requests again.
	time.Sleep(60 * time.Millisecond)
	d = l.Check(ctx, "1.2.3.4")
	assert.True(t, d.Allowed)
}

func TestMemoryLimiterIndependentIdentifiers(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute)
	ctx := context.Background()

	require.True(t, l.Check(ctx, "a").Allowed)
	require.False(t, l.Check(ctx, "a").Allowed)
	assert.True(t, l.Check(ctx, "b").Allowed, "identifiers must not share a window")
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/login", ok, RateLimit(NewMemoryLimiter(1, time.Minute)))

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	rec := do()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))

	rec = do()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "rate limit exceeded")
}

func TestRateLimitNilLimiterPassesThrough(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.POST("/login", ok, RateLimit(nil))

	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
