package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with marketplace specific helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the given level
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text in development, JSON everywhere else
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithRequestID adds request ID to logger context
func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

// WithLogin adds the acting user's login to logger context
func (l *Logger) WithLogin(login string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("login", login))}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.Int("size", c.Writer.Size()),
	)
}

// Marketplace logging methods

func (l *Logger) LogTicketsPurchased(ctx context.Context, purchaseID, buyer, eventID string, count int, total string) {
	l.Logger.InfoContext(ctx,
		"Tickets Purchased",
		slog.String("purchase_id", purchaseID),
		slog.String("buyer", buyer),
		slog.String("event_id", eventID),
		slog.Int("tickets", count),
		slog.String("total", total),
	)
}

func (l *Logger) LogTicketTransferred(ctx context.Context, ticketID, from, to string) {
	l.Logger.InfoContext(ctx,
		"Ticket Transferred",
		slog.String("ticket_id", ticketID),
		slog.String("from", from),
		slog.String("to", to),
	)
}

func (l *Logger) LogListingCreated(ctx context.Context, listingID, ticketID, seller, price string) {
	l.Logger.InfoContext(ctx,
		"Listing Created",
		slog.String("listing_id", listingID),
		slog.String("ticket_id", ticketID),
		slog.String("seller", seller),
		slog.String("price", price),
	)
}

func (l *Logger) LogListingSold(ctx context.Context, listingID, buyer, price string) {
	l.Logger.InfoContext(ctx,
		"Listing Sold",
		slog.String("listing_id", listingID),
		slog.String("buyer", buyer),
		slog.String("price", price),
	)
}

func (l *Logger) LogCounterofferResolved(ctx context.Context, counterofferID, listingID, status string, autoRejected int) {
	l.Logger.InfoContext(ctx,
		"Counteroffer Resolved",
		slog.String("counteroffer_id", counterofferID),
		slog.String("listing_id", listingID),
		slog.String("status", status),
		slog.Int("auto_rejected", autoRejected),
	)
}

func (l *Logger) LogRefundIssued(ctx context.Context, ticketID, holder, amount, reason string) {
	l.Logger.InfoContext(ctx,
		"Refund Issued",
		slog.String("ticket_id", ticketID),
		slog.String("holder", holder),
		slog.String("amount", amount),
		slog.String("reason", reason),
	)
}

// Security logging methods

func (l *Logger) LogAuthSuccess(ctx context.Context, login, method string) {
	l.Logger.InfoContext(ctx, "Authentication Success", slog.String("login", login), slog.String("method", method))
}

func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx, "Authentication Failure", slog.String("reason", reason), slog.String("ip", ip))
}

func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx, "Rate Limit Exceeded", slog.String("ip", ip), slog.String("endpoint", endpoint))
}

// InfoWithContext logs an info message with context
func (l *Logger) InfoWithContext(ctx context.Context, msg string, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.InfoContext(ctx, msg, args...)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

// Global logger instance (can be replaced with dependency injection)
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
