package ratelimit

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"

	"boletamaster/internal/shared/utils/response"
	"boletamaster/pkg/logger"
	"boletamaster/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Middleware limits requests per client IP and route class. Health probes
// are never limited; a failing Redis lets traffic through.
func Middleware(rateLimiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		limitType := getRateLimitType(c.Request.Method, c.FullPath())
		if limitType == RateLimitTypeHealth {
			c.Next()
			return
		}

		result, err := rateLimiter.IsAllowed(c.Request.Context(), getClientIP(c), limitType)
		if err != nil {
			logger.GetDefault().Warn("rate limit check failed, admitting request",
				slog.String("class", string(limitType)), slog.Any("error", err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime, 10))

		if !result.Allowed {
			metrics.TrackRateLimited(string(limitType))
			logger.GetDefault().LogRateLimitExceeded(c.Request.Context(), getClientIP(c), c.FullPath())
			response.RespondJSON(c, "error", http.StatusTooManyRequests,
				"Rate limit exceeded", nil, map[string]interface{}{
					"limit":      result.Limit,
					"reset_time": result.ResetTime,
				})
			c.Abort()
			return
		}

		c.Next()
	}
}

func getRateLimitType(method, path string) RateLimitType {
	switch {
	case path == "/health", path == "/ping", path == "/metrics":
		return RateLimitTypeHealth

	case strings.Contains(path, "/admin/"):
		return RateLimitTypeAdmin

	case strings.Contains(path, "/auth/"):
		return RateLimitTypeAuth

	// anything that moves money or tickets
	case method != http.MethodGet && (strings.Contains(path, "/marketplace/") ||
		strings.Contains(path, "/wallet") ||
		strings.Contains(path, "/refunds/")):
		return RateLimitTypeMarketplace

	case method == http.MethodGet && (strings.Contains(path, "/events") ||
		strings.Contains(path, "/venues") ||
		strings.Contains(path, "/marketplace/listings")):
		return RateLimitTypePublic

	default:
		return RateLimitTypeDefault
	}
}

// extracts real client IP
func getClientIP(c *gin.Context) string {
	if xForwardedFor := c.GetHeader("X-Forwarded-For"); xForwardedFor != "" {
		ip := strings.TrimSpace(strings.Split(xForwardedFor, ",")[0])
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xRealIP := c.GetHeader("X-Real-IP"); xRealIP != "" && net.ParseIP(xRealIP) != nil {
		return xRealIP
	}

	ip, _, err := net.SplitHostPort(c.Request.RemoteAddr)
	if err != nil {
		return c.Request.RemoteAddr
	}
	return ip
}
