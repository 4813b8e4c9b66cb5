package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "boletamaster"

var (
	marketplaceOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "marketplace_operations_total",
			Help:      "Marketplace operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	marketplaceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "marketplace_operation_duration_seconds",
			Help:      "Duration of marketplace operations, lock wait included",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_sold_total",
			Help:      "Tickets changing hands for money, by sale kind",
		},
		[]string{"kind"},
	)

	lockWait = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lock_wait_seconds",
			Help:      "Time spent acquiring marketplace locks",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"backend"},
	)

	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the rate limiter",
		},
		[]string{"class"},
	)

	activityConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_messages_total",
			Help:      "Domain event messages handled by the activity consumer",
		},
		[]string{"status"},
	)
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ObserveOperation records one marketplace call; use it with defer:
//
//	defer metrics.ObserveOperation("buy_primary", time.Now(), &err)
func ObserveOperation(operation string, started time.Time, err *error) {
	outcome := OutcomeSuccess
	if err != nil && *err != nil {
		outcome = OutcomeError
	}
	marketplaceOperations.WithLabelValues(operation, outcome).Inc()
	marketplaceDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func TrackTicketsSold(kind string, count int) {
	ticketsSold.WithLabelValues(kind).Add(float64(count))
}

func TrackLockWait(backend string, d time.Duration) {
	lockWait.WithLabelValues(backend).Observe(d.Seconds())
}

func TrackRateLimited(class string) {
	rateLimited.WithLabelValues(class).Inc()
}

func TrackActivityMessage(status string) {
	activityConsumed.WithLabelValues(status).Inc()
}

// GinMiddleware records request counts and latency per matched route
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
