package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classfund/treasury-server/internal/models"
	"github.com/classfund/treasury-server/internal/service"
)

// ListTransactions handles GET /api/transactions
func (h *Handler) ListTransactions(c *gin.Context) {
	page, err := h.svc.ListTransactions(c.Request.Context(), parseRecordFilters(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetTransaction handles GET /api/transactions/:id
func (h *Handler) GetTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	record, err := h.svc.GetTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// CreateTransaction handles POST /api/transactions
func (h *Handler) CreateTransaction(c *gin.Context) {
	var req models.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.svc.CreateTransaction(c.Request.Context(), currentUser(c), req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// UpdateTransaction handles PUT /api/transactions/:id
func (h *Handler) UpdateTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	var req models.UpdateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	record, err := h.svc.UpdateTransaction(c.Request.Context(), currentUser(c), id, req, clientInfo(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// DeleteTransaction handles DELETE /api/transactions/:id
func (h *Handler) DeleteTransaction(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		respondError(c, service.ErrNotFound)
		return
	}

	if err := h.svc.DeleteTransaction(c.Request.Context(), currentUser(c), id, clientInfo(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "Transaction deleted successfully"})
}

// Balance handles GET /api/transactions/balance
func (h *Handler) Balance(c *gin.Context) {
	balance, err := h.svc.Balance(c.Request.Context(),
		parseStartDate(c.Query("start_date")), parseEndDate(c.Query("end_date")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, balance)
}
