package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// Setup initializes the global structured logger.
// In production, it uses JSON format; in development, text format.
func Setup(env string) *slog.Logger {
	logger := New(os.Stdout, env)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w with the format chosen by env.
func New(w io.Writer, env string) *slog.Logger {
	var handler slog.Handler

	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}

	return slog.New(handler)
}

// Middleware assigns a request id and logs one line per request.
func Middleware(log *slog.Logger) gin.HandlerFunc {
	if log == nil {
		log = slog.Default()
	}

	return func(c *gin.Context) {
		start := time.Now()

		rid := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if rid == "" || len(rid) > 128 {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", rid,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", attrs...)
		case status >= 400:
			log.Warn("request rejected", attrs...)
		default:
			log.Info("request handled", attrs...)
		}
	}
}

// RequestID returns the id assigned by Middleware, or "" outside a request.
func RequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
