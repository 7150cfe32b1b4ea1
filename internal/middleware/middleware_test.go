package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iliyamo/ndc-feature-tracker/internal/config"
	"github.com/iliyamo/ndc-feature-tracker/internal/utils"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func cacheConfig() config.CacheConfig {
	return config.CacheConfig{
		Enabled:      true,
		Methods:      map[string]bool{http.MethodGet: true},
		TTL:          time.Minute,
		KeyStrategy:  "route_query",
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}
}

func TestResponseCache_HitAfterMiss(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, zaptest.NewLogger(t))

	calls := 0
	e := echo.New()
	e.GET("/api/airlines/:id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"id": c.Param("id")})
	}, rc.Middleware())

	do := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	first := do("/api/airlines/1")
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	second := do("/api/airlines/1")
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)

	other := do("/api/airlines/2")
	assert.Equal(t, "MISS", other.Header().Get("X-Cache"))
	assert.Contains(t, other.Body.String(), `"2"`)
	assert.Equal(t, 2, calls)
}

func TestResponseCache_SkipsErrors(t *testing.T) {
	_, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, zaptest.NewLogger(t))

	e := echo.New()
	e.GET("/x", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Not found"})
	}, rc.Middleware())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))
	}
}

func TestResponseCache_InvalidateOnWrite(t *testing.T) {
	mr, rdb := newRedis(t)
	rc := NewResponseCache(cacheConfig(), rdb, zaptest.NewLogger(t))
	require.NoError(t, mr.Set("cache:abc", "x"))
	require.NoError(t, mr.Set("cache:def", "y"))
	require.NoError(t, mr.Set("rl:keep", "z"))

	e := echo.New()
	e.POST("/ok", func(c echo.Context) error { return c.NoContent(http.StatusCreated) }, rc.InvalidateOnWrite())
	e.POST("/bad", func(c echo.Context) error { return c.NoContent(http.StatusBadRequest) }, rc.InvalidateOnWrite())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bad", nil))
	assert.True(t, mr.Exists("cache:abc"))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ok", nil))
	assert.False(t, mr.Exists("cache:abc"))
	assert.False(t, mr.Exists("cache:def"))
	assert.True(t, mr.Exists("rl:keep"))
}

func TestResponseCache_DisabledWithoutRedis(t *testing.T) {
	rc := NewResponseCache(cacheConfig(), nil, zaptest.NewLogger(t))
	assert.NoError(t, rc.Invalidate(context.Background()))

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") }, rc.Middleware())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestRateLimit(t *testing.T) {
	_, rdb := newRedis(t)
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Minute,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl",
	}
	e := echo.New()
	e.POST("/api/chat", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(cfg, rdb, zaptest.NewLogger(t)))

	statuses := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		e.ServeHTTP(last, req)
		statuses = append(statuses, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
	assert.Equal(t, "0", last.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "Too many requests")

	other := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	e.ServeHTTP(other, req)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestRateLimit_RedisDownPassesThrough(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1, RefillTokens: 1, RefillInterval: time.Second, TTL: time.Minute, Prefix: "rl"}

	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RateLimit(cfg, rdb, zaptest.NewLogger(t)))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestCatalogWriters(t *testing.T) {
	editor, err := utils.NewAccessToken("s3cret", 7, "EDITOR", 5)
	require.NoError(t, err)
	viewer, err := utils.NewAccessToken("s3cret", 8, "VIEWER", 5)
	require.NoError(t, err)

	e := echo.New()
	e.POST("/w", func(c echo.Context) error {
		return c.String(http.StatusOK, c.Get(utils.ContextRole).(string))
	}, CatalogWriters(true, "s3cret")...)
	e.POST("/open", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, CatalogWriters(false, "s3cret")...)

	cases := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no token", "/w", "", http.StatusUnauthorized},
		{"bad token", "/w", "Bearer nope", http.StatusUnauthorized},
		{"viewer", "/w", "Bearer " + viewer.Token, http.StatusForbidden},
		{"editor", "/w", "Bearer " + editor.Token, http.StatusOK},
		{"auth disabled", "/open", "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tc.path, strings.NewReader("{}"))
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger(zaptest.NewLogger(t)))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Len(t, rec.Header().Get(echo.HeaderXRequestID), 36)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(echo.HeaderXRequestID, "abc")
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Header().Get(echo.HeaderXRequestID))
}
