// internal/app/router.go
package app

import (
	opsHandler "duka-service/internal/handlers/ops"
	"duka-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	OpsHandler     *opsHandler.OpsHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	// ==================== Health Check ====================
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== Ops ====================
	api := r.Group("/api/v1")

	jobs := api.Group("/jobs")
	{
		jobs.GET("", h.OpsHandler.ListJobs)
		jobs.POST("/:name/run", h.AuthMiddleware.Auth(), h.OpsHandler.RunJob)
	}
}
