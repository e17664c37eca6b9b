package handler

import (
	"strconv"

	"knowledge-hub/internal/repository"
	"knowledge-hub/internal/util"

	"github.com/gin-gonic/gin"
)

// LogHandler serves the audit trail.
type LogHandler struct {
	logs        repository.AuditRepository
	defaultSize int
}

func NewLogHandler(logs repository.AuditRepository, pageSize int) *LogHandler {
	return &LogHandler{logs: logs, defaultSize: pageSize}
}

// ListLogs pages through the audit trail; q filters by path.
func (h *LogHandler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.defaultSize)))
	if size <= 0 || size > 100 {
		size = h.defaultSize
	}

	logs, total, err := h.logs.List(c.Request.Context(), c.Query("q"), page, size)
	if err != nil {
		internalError(c, "list_audit_logs", err)
		return
	}

	util.Success(c, util.Response{
		"logs":      logs,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}
