package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// PublicTransactions handles GET /api/public/transactions
func (h *Handler) PublicTransactions(c *gin.Context) {
	page, err := h.svc.PublicTransactions(c.Request.Context(), parseRecordFilters(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// PublicBalance handles GET /api/public/balance
func (h *Handler) PublicBalance(c *gin.Context) {
	balance, err := h.svc.PublicBalance(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}
