package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aufwind/aufwind-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes. Mutations are admin-only; customers
// read their own records through the customer-scoped routes.
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	customerHandler *CustomerHandler,
	membershipHandler *MembershipHandler,
	pointHandler *PointHandler,
	reportHandler *ReportHandler,
	moduleHandler *ModuleHandler,
	wsHandler *WebSocketHandler,
) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// WebSocket authenticates via token query parameter during the upgrade
	e.GET("/ws", wsHandler.HandleWS)

	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))
	api.Use(middleware.Metrics())

	// Customer routes
	customers := api.Group("/customers")
	customers.POST("", customerHandler.OnboardCustomer, middleware.RequireAdmin())
	customers.GET("", customerHandler.GetCustomers, middleware.RequireAdmin())
	customers.GET("/:id", customerHandler.GetCustomer, middleware.RequireCustomerScope())

	// Membership routes
	customers.GET("/:id/membership", membershipHandler.GetMembership, middleware.RequireCustomerScope())
	customers.PATCH("/:id/membership", membershipHandler.UpdateMembership, middleware.RequireAdmin())

	// Point transaction routes
	customers.POST("/:id/points", pointHandler.BookPoints, middleware.RequireAdmin())
	customers.GET("/:id/points", pointHandler.GetPoints, middleware.RequireCustomerScope())
	customers.PATCH("/:id/points/:txId", pointHandler.UpdatePoints, middleware.RequireAdmin())
	customers.DELETE("/:id/points/:txId", pointHandler.DeletePoints, middleware.RequireAdmin())

	// Report routes
	customers.GET("/:id/reports/categories", reportHandler.GetCategoryReport, middleware.RequireCustomerScope())
	customers.GET("/:id/reports/trend", reportHandler.GetTrend, middleware.RequireCustomerScope())

	// Delivery module routes
	customers.GET("/:id/modules", moduleHandler.GetModules, middleware.RequireCustomerScope())
	customers.POST("/:id/modules", moduleHandler.CreateModule, middleware.RequireAdmin())
	customers.DELETE("/:id/modules/:moduleId", moduleHandler.DeleteModule, middleware.RequireAdmin())
}
