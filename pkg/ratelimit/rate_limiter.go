package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

type RateLimitType string

const (
	RateLimitTypeDefault     RateLimitType = "default"
	RateLimitTypePublic      RateLimitType = "public"
	RateLimitTypeAuth        RateLimitType = "auth"
	RateLimitTypeMarketplace RateLimitType = "marketplace"
	RateLimitTypeAdmin       RateLimitType = "admin"
	RateLimitTypeHealth      RateLimitType = "health"
)

const keyPrefix = "boletamaster:ratelimit:"

type Config struct {
	Enabled             bool          `json:"enabled"`
	WindowDuration      time.Duration `json:"window_duration"`
	DefaultRequests     int           `json:"default_requests"`
	PublicRequests      int           `json:"public_requests"`
	AuthRequests        int           `json:"auth_requests"`
	MarketplaceRequests int           `json:"marketplace_requests"`
	AdminRequests       int           `json:"admin_requests"`
	WhitelistedIPs      []string      `json:"whitelisted_ips"`
}

// Result represents rate limit check result
type Result struct {
	Allowed   bool  `json:"allowed"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// slidingWindow trims the window, then admits the request if there is room.
// Returns {count, remaining}; count is above the limit when rejected.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
	local current = redis.call('ZCARD', key)
	if current >= limit then
		redis.call('PEXPIRE', key, window_ms)
		return {current + 1, 0}
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)
	return {current + 1, limit - current - 1}
`)

// RateLimiter is a Redis sliding-window limiter keyed by client IP and
// route class
type RateLimiter struct {
	client    redis.Cmdable
	config    *Config
	whitelist map[string]bool
	now       func() time.Time
	seq       atomic.Uint64
}

func NewRateLimiter(client redis.Cmdable, config *Config) *RateLimiter {
	whitelist := make(map[string]bool, len(config.WhitelistedIPs))
	for _, ip := range config.WhitelistedIPs {
		whitelist[ip] = true
	}
	return &RateLimiter{
		client:    client,
		config:    config,
		whitelist: whitelist,
		now:       time.Now,
	}
}

// WithClock replaces the time source, for tests
func (r *RateLimiter) WithClock(now func() time.Time) *RateLimiter {
	r.now = now
	return r
}

// IsAllowed checks one request against its class limit
func (r *RateLimiter) IsAllowed(ctx context.Context, clientIP string, limitType RateLimitType) (*Result, error) {
	limit := r.getLimit(limitType)
	if !r.config.Enabled || r.whitelist[clientIP] {
		return &Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit,
			ResetTime: r.now().Add(r.config.WindowDuration).Unix(),
		}, nil
	}

	key := keyPrefix + clientIP + ":" + string(limitType)
	return r.checkLimit(ctx, key, limit)
}

func (r *RateLimiter) checkLimit(ctx context.Context, key string, limit int) (*Result, error) {
	now := r.now()
	windowStart := now.Add(-r.config.WindowDuration)
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + strconv.FormatUint(r.seq.Add(1), 10)

	res, err := slidingWindow.Run(ctx, r.client, []string{key},
		windowStart.UnixMilli(),
		now.UnixMilli(),
		limit,
		r.config.WindowDuration.Milliseconds(),
		member).Result()
	if err != nil {
		return nil, fmt.Errorf("redis eval failed: %w", err)
	}

	values, ok := res.([]interface{})
	if !ok || len(values) != 2 {
		return nil, fmt.Errorf("unexpected redis response: %v", res)
	}
	count, ok1 := values[0].(int64)
	remaining, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("unexpected redis response: %v", res)
	}

	return &Result{
		Allowed:   count <= int64(limit),
		Limit:     limit,
		Remaining: int(remaining),
		ResetTime: now.Add(r.config.WindowDuration).Unix(),
	}, nil
}

func (r *RateLimiter) getLimit(limitType RateLimitType) int {
	switch limitType {
	case RateLimitTypePublic:
		return r.config.PublicRequests
	case RateLimitTypeAuth:
		return r.config.AuthRequests
	case RateLimitTypeMarketplace:
		return r.config.MarketplaceRequests
	case RateLimitTypeAdmin:
		return r.config.AdminRequests
	case RateLimitTypeHealth:
		return 0
	default:
		return r.config.DefaultRequests
	}
}
