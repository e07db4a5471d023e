package server

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/upskillworks/roadmap-backend/internal/http/handlers"
	"github.com/upskillworks/roadmap-backend/internal/middleware"
	"github.com/upskillworks/roadmap-backend/internal/utils"
)

type RouterConfig struct {
	AuthMiddleware *middleware.AuthMiddleware
	RoadmapHandler *handlers.RoadmapHandler
	InsightHandler *handlers.InsightHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(otelgin.Middleware("roadmap-backend"))

	// Cors
	origins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", nil)
	router.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Split(origins, ","),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	// Roadmaps
	api.POST("/projects/:projectID/roadmaps", cfg.RoadmapHandler.CreateRoadmap)
	api.GET("/projects/:projectID/roadmaps", cfg.RoadmapHandler.ListRoadmapVersions)
	api.GET("/roadmaps/:roadmapID", cfg.RoadmapHandler.GetRoadmapVersion)
	api.PATCH("/roadmaps/:roadmapID", cfg.RoadmapHandler.UpdateRoadmapManually)
	api.POST("/roadmaps/:roadmapID/finalize", cfg.RoadmapHandler.FinalizeRoadmap)
	api.GET("/roadmaps/:roadmapID/export-url", cfg.RoadmapHandler.ExportURL)
	// Interview insights
	api.POST("/projects/:projectID/interview-insights", cfg.InsightHandler.ExtractInsights)

	return router
}
