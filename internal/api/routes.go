package api

import (
	"html/template"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS())
	router.Use(Logger(logger))

	router.SetHTMLTemplate(template.Must(template.New("dashboard").Parse(dashboardTemplate)))

	// Dashboard
	router.GET("/", handler.Dashboard)

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/stats", handler.GetStats)
		v1.POST("/collect", handler.Collect)
		v1.GET("/repos/:org/:repo/samples", handler.GetSamples)
	}

	return router
}
