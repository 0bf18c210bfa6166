package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classfund/treasury-server/internal/service"
)

// ListAuditLogs handles GET /api/audit-logs
func (h *Handler) ListAuditLogs(c *gin.Context) {
	page, err := h.svc.ListAuditLogs(c.Request.Context(), parseAuditFilters(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetAuditLog handles GET /api/audit-logs/:id
func (h *Handler) GetAuditLog(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	entry, err := h.svc.GetAuditLog(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
