package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/shopmetrics/insights/internal/api/v1"
	"github.com/shopmetrics/insights/internal/logger"
	"github.com/shopmetrics/insights/internal/rest/middleware"
)

type Handlers struct {
	Dashboard *v1.DashboardHandler
	Health    *v1.HealthHandler
}

func NewHandlers(dashboard *v1.DashboardHandler, health *v1.HealthHandler) Handlers {
	return Handlers{
		Dashboard: dashboard,
		Health:    health,
	}
}

func NewRouter(handlers Handlers, log *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("", handlers.Dashboard.GetDashboard)
		dashboard.GET("/daily-orders", handlers.Dashboard.GetDailyOrders)
		dashboard.GET("/categories", handlers.Dashboard.GetCategories)
		dashboard.GET("/states", handlers.Dashboard.GetStates)
		dashboard.GET("/rfm", handlers.Dashboard.GetRFM)
	}
}
