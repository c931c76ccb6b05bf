package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes
func SetupRoutes(handler *Handler) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(RequestID())
	router.Use(CORS())
	router.Use(Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		v1.GET("/rate-limit", handler.GetRateLimit)

		repos := v1.Group("/repos/:owner/:repo")
		{
			repos.GET("/series/:kind", handler.GetWeeklySeries)
			repos.GET("/dashboard", handler.GetDashboard)
			repos.GET("/queries", handler.ListQueries)
		}
	}

	return router
}
