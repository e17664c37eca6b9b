package middleware

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"knowledge-hub/internal/models"

	"github.com/gin-gonic/gin"
)

// AuditWriter persists audit entries.
type AuditWriter interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Audit records every API call made with a valid session. Request bodies
// are not read.
func Audit(w AuditWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		user := Identity(c)
		if user == nil {
			return
		}

		userID := user.ID
		entry := models.AuditLog{
			UserID:    &userID,
			Method:    c.Request.Method,
			Path:      truncate(c.Request.URL.Path, 255),
			Status:    c.Writer.Status(),
			IP:        c.ClientIP(),
			UserAgent: truncate(c.Request.UserAgent(), 255),
		}
		if err := w.Create(context.WithoutCancel(c.Request.Context()), &entry); err != nil {
			slog.WarnContext(c.Request.Context(), "audit write failed",
				"module", "middleware",
				"operation", "audit",
				"outcome", "failure",
				"path", entry.Path,
				"error", err.Error(),
			)
		}
	}
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
