package middleware

import (
	"log/slog"
	"time"

	"knowledge-hub/internal/metrics"

	"github.com/gin-gonic/gin"
)

// RequestLogger logs one line per request and feeds the latency histogram.
func RequestLogger(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		status := c.Writer.Status()
		m.ObserveRequest(c.Request.Method, c.FullPath(), status, elapsed)

		level := slog.LevelInfo
		switch {
		case status >= 500:
			level = slog.LevelError
		case status >= 400:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
			slog.String("ip", c.ClientIP()),
		)
	}
}
