// Package handler implements the JSON API and the HTML pages of the hub.
package handler

import (
	"log/slog"
	"net/http"

	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

// internalError logs err and answers with the opaque 500 body.
func internalError(c *gin.Context, operation string, err error) {
	slog.ErrorContext(c.Request.Context(), "request failed",
		"module", "handler",
		"operation", operation,
		"outcome", "failure",
		"path", c.Request.URL.Path,
		"error", err.Error(),
	)
	util.Error(c, http.StatusInternalServerError, util.MsgInternal)
}
