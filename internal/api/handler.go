package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/classfund/treasury-server/internal/service"
)

// Handler holds the HTTP handlers for all API routes
type Handler struct {
	svc service.Service
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service) *Handler {
	return &Handler{svc: svc}
}

// SetupRoutes registers all routes on the router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		authed := auth.Group("", AuthMiddleware(h.svc))
		authed.GET("/me", h.Me)
		authed.POST("/logout", h.Logout)
		authed.PUT("/profile", h.UpdateProfile)
		authed.PUT("/change-password", h.ChangePassword)
	}

	transactions := api.Group("/transactions", AuthMiddleware(h.svc))
	{
		transactions.GET("", h.ListTransactions)
		transactions.GET("/balance", h.Balance)
		transactions.GET("/:id", h.GetTransaction)
		transactions.POST("", h.CreateTransaction)
		transactions.PUT("/:id", h.UpdateTransaction)
		transactions.DELETE("/:id", h.DeleteTransaction)
	}

	users := api.Group("/users", AuthMiddleware(h.svc), AdminRequired())
	{
		users.GET("", h.ListUsers)
		users.GET("/:id", h.GetUser)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}

	audit := api.Group("/audit-logs", AuthMiddleware(h.svc), AdminRequired())
	{
		audit.GET("", h.ListAuditLogs)
		audit.GET("/:id", h.GetAuditLog)
	}

	public := api.Group("/public")
	{
		public.GET("/transactions", h.PublicTransactions)
		public.GET("/balance", h.PublicBalance)
	}
}

// Health is a liveness probe
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
