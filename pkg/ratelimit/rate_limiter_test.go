package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func testConfig() *Config {
	return &Config{
		Enabled:             true,
		WindowDuration:      time.Minute,
		DefaultRequests:     60,
		PublicRequests:      100,
		AuthRequests:        10,
		MarketplaceRequests: 2,
		AdminRequests:       200,
		WhitelistedIPs:      []string{"10.0.0.1"},
	}
}

func TestIsAllowed_SlidingWindow(t *testing.T) {
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, testConfig()).WithClock(func() time.Time { return fixedNow })
	key := keyPrefix + "1.2.3.4:marketplace"
	args := func(seq string) []interface{} {
		return []interface{}{
			fixedNow.Add(-time.Minute).UnixMilli(),
			fixedNow.UnixMilli(),
			2,
			time.Minute.Milliseconds(),
			"1792238400000000000-" + seq,
		}
	}

	mock.ExpectEvalSha(slidingWindow.Hash(), []string{key}, args("1")...).SetVal([]interface{}{int64(1), int64(1)})
	mock.ExpectEvalSha(slidingWindow.Hash(), []string{key}, args("2")...).SetVal([]interface{}{int64(3), int64(0)})

	res, err := rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeMarketplace)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 2, res.Limit)
	assert.Equal(t, 1, res.Remaining)

	res, err = rl.IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeMarketplace)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsAllowed_BypassesRedis(t *testing.T) {
	db, mock := redismock.NewClientMock()

	rl := NewRateLimiter(db, testConfig())
	res, err := rl.IsAllowed(context.Background(), "10.0.0.1", RateLimitTypeAuth)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, 10, res.Remaining)

	cfg := testConfig()
	cfg.Enabled = false
	res, err = NewRateLimiter(db, cfg).IsAllowed(context.Background(), "1.2.3.4", RateLimitTypeAdmin)
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRateLimitType(t *testing.T) {
	cases := []struct {
		method, path string
		want         RateLimitType
	}{
		{http.MethodGet, "/health", RateLimitTypeHealth},
		{http.MethodGet, "/metrics", RateLimitTypeHealth},
		{http.MethodPost, "/api/v1/admin/events/:id/cancel", RateLimitTypeAdmin},
		{http.MethodPost, "/api/v1/auth/login", RateLimitTypeAuth},
		{http.MethodPost, "/api/v1/marketplace/purchases", RateLimitTypeMarketplace},
		{http.MethodPost, "/api/v1/wallet/deposit", RateLimitTypeMarketplace},
		{http.MethodGet, "/api/v1/marketplace/listings", RateLimitTypePublic},
		{http.MethodGet, "/api/v1/events", RateLimitTypePublic},
		{http.MethodGet, "/api/v1/marketplace/tickets", RateLimitTypeDefault},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, getRateLimitType(tc.method, tc.path), tc.method+" "+tc.path)
	}
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock := redismock.NewClientMock()
	rl := NewRateLimiter(db, testConfig()).WithClock(func() time.Time { return fixedNow })

	r := gin.New()
	r.Use(Middleware(rl))
	r.POST("/api/v1/marketplace/purchases", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	key := keyPrefix + "1.2.3.4:marketplace"
	args := func(seq string) []interface{} {
		return []interface{}{
			fixedNow.Add(-time.Minute).UnixMilli(),
			fixedNow.UnixMilli(),
			2,
			time.Minute.Milliseconds(),
			"1792238400000000000-" + seq,
		}
	}
	mock.ExpectEvalSha(slidingWindow.Hash(), []string{key}, args("1")...).SetVal([]interface{}{int64(3), int64(0)})
	mock.ExpectEvalSha(slidingWindow.Hash(), []string{key}, args("2")...).SetErr(errors.New("connection refused"))

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.9")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/v1/marketplace/purchases")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	// redis down: admitted
	w = do(http.MethodPost, "/api/v1/marketplace/purchases")
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}
