package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheck reports whether one backing service is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter mounts every route. Only login and health are reachable without
// a session.
func NewRouter(authHandler *AuthHandler, catalog *CatalogHandler, payouts *PayoutHandler, checks map[string]HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/health", health(checks))
	router.POST("/api/auth/login", authHandler.Login)

	api := router.Group("/api", authHandler.RequireSession())
	{
		api.GET("/auth/session", authHandler.Session)
		api.POST("/auth/logout", authHandler.Logout)

		api.GET("/items", catalog.ListItems)
		api.POST("/items", catalog.CreateItem)
		api.GET("/items/:id", catalog.GetItem)
		api.PUT("/items/:id", catalog.UpdateItem)
		api.DELETE("/items/:id", catalog.DeleteItem)

		api.GET("/resellers", catalog.ListResellers)
		api.POST("/resellers", catalog.CreateReseller)
		api.GET("/resellers/:id", catalog.GetReseller)
		api.PUT("/resellers/:id", catalog.UpdateReseller)
		api.DELETE("/resellers/:id", catalog.DeleteReseller)

		api.GET("/orders", catalog.ListOrders)
		api.POST("/orders", catalog.CreateOrder)
		api.GET("/orders/form-options", catalog.OrderFormOptions)
		api.GET("/orders/:id", catalog.GetOrder)
		api.PUT("/orders/:id", catalog.UpdateOrder)
		api.DELETE("/orders/:id", catalog.DeleteOrder)

		api.GET("/payouts", payouts.Summary)
		api.GET("/payouts/document", payouts.Document)
		api.POST("/payouts/:order_id/toggle", payouts.TogglePaid)

		api.GET("/export/:relation", payouts.Export)
		api.POST("/maintenance/clear/:relation", payouts.Clear)
	}

	return router
}

// health answers 200 when every check passes and 503 naming the failures
// otherwise.
func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		services := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				services[name] = err.Error()
				continue
			}
			services[name] = "ok"
		}

		body := gin.H{"status": "ok", "services": services}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
