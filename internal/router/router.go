package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/dietrec/backend/config"
	"github.com/pageza/dietrec/backend/internal/api"
	"github.com/pageza/dietrec/backend/internal/middleware"
	"github.com/pageza/dietrec/backend/internal/service"
)

// Dependencies are the services the routes are wired to.
type Dependencies struct {
	Dataset     api.DatasetStatus
	Recommender service.IRecommendationService
	Planner     service.IDietPlanService
	// Limiter throttles the recommendation routes. Nil disables rate limiting.
	Limiter middleware.Limiter
}

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORS.AllowedOrigins),
		middleware.Timeout(cfg.Server.RequestTimeout),
	)
	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	healthHandler := api.NewHealthHandler(deps.Dataset)
	predictHandler := api.NewPredictHandler(deps.Recommender, cfg.Recommend.DefaultNeighbors)
	dietHandler := api.NewDietPlanHandler(deps.Planner, cfg.Recommend.DefaultNeighbors)

	// Operational endpoints are never rate limited
	router.GET("/", healthHandler.HealthCheck)
	healthHandler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	limited := []gin.HandlerFunc{}
	if deps.Limiter != nil {
		limited = append(limited, middleware.RateLimit(deps.Limiter, cfg.RateLimit.Window))
	}

	// Legacy predict path, kept for existing clients
	router.POST("/predict/", append(limited, predictHandler.Predict)...)

	v1 := router.Group("/api/v1")
	healthHandler.RegisterRoutes(v1)

	recommend := v1.Group("", limited...)
	predictHandler.RegisterRoutes(recommend)
	dietHandler.RegisterRoutes(recommend)

	return router
}
