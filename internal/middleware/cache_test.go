package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arisehq/arise-api/internal/config"
)

func catalogContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/assessments")
	return c
}

func TestCatalogCacheKeyQueryOrder(t *testing.T) {
	a := catalogCacheKey("catalog", catalogContext("/v1/assessments?search=alpha&filter=active"))
	b := catalogCacheKey("catalog", catalogContext("/v1/assessments?filter=active&search=alpha"))
	assert.Equal(t, a, b)

	c := catalogCacheKey("catalog", catalogContext("/v1/assessments?search=beta"))
	assert.NotEqual(t, a, c)

	assert.True(t, len(a) > len("catalog:"))
	assert.Equal(t, "catalog:", a[:len("catalog:")])
}

func TestCatalogWriterOversize(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &catalogWriter{ResponseWriter: rec, status: http.StatusOK, max: 10}

	_, err := w.Write([]byte("12345"))
	require.NoError(t, err)
	assert.Equal(t, []byte("12345"), w.body)

	// Crossing max abandons the capture entirely; a truncated body must
	// never be stored.
	_, err = w.Write([]byte("67890AB"))
	require.NoError(t, err)
	assert.True(t, w.over)
	assert.Nil(t, w.body)

	// The client still receives the full response.
	assert.Equal(t, "1234567890AB", rec.Body.String())
}

func TestCacheDisabledPassthrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	e.GET("/v1/assessments", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"assessments": []string{}})
	}, mw)

	req := httptest.NewRequest(http.MethodGet, "/v1/assessments", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
