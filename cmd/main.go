package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/upskillworks/roadmap-backend/internal/data/db"
	auditrepo "github.com/upskillworks/roadmap-backend/internal/data/repos/audit"
	projectrepo "github.com/upskillworks/roadmap-backend/internal/data/repos/project"
	roadmaprepo "github.com/upskillworks/roadmap-backend/internal/data/repos/roadmap"
	usagerepo "github.com/upskillworks/roadmap-backend/internal/data/repos/usage"
	"github.com/upskillworks/roadmap-backend/internal/http/handlers"
	"github.com/upskillworks/roadmap-backend/internal/middleware"
	"github.com/upskillworks/roadmap-backend/internal/observability"
	"github.com/upskillworks/roadmap-backend/internal/pkg/logger"
	"github.com/upskillworks/roadmap-backend/internal/platform/gcs"
	"github.com/upskillworks/roadmap-backend/internal/platform/openai"
	"github.com/upskillworks/roadmap-backend/internal/platform/speech"
	"github.com/upskillworks/roadmap-backend/internal/server"
	"github.com/upskillworks/roadmap-backend/internal/services"
	"github.com/upskillworks/roadmap-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	otelShutdown := observability.InitTracing(context.Background(), log, observability.Config{
		ServiceName: "roadmap-backend",
		Environment: utils.GetEnv("APP_ENV", "development", log),
		Version:     utils.GetEnv("APP_VERSION", "dev", log),
	})
	if otelShutdown != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(ctx)
		}()
	}

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	projectRepo := projectrepo.NewProjectRepo(thePG, log)
	versionRepo := roadmaprepo.NewRoadmapVersionRepo(thePG, log)
	auditLogRepo := auditrepo.NewAuditLogRepo(thePG, log)
	llmUsageRepo := usagerepo.NewLLMUsageRepo(thePG, log)

	// Platform clients
	log.Info("Setting up platform clients from main...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init OpenAI client", "error", err)
		os.Exit(1)
	}
	bucket, err := gcs.NewBucket(log)
	if err != nil {
		log.Warn("Could not init GCS bucket, exports disabled", "error", err)
	}
	transcriber, err := speech.NewTranscriber(log)
	if err != nil {
		log.Warn("Could not init speech transcriber, insight extraction from audio disabled", "error", err)
	}
	redisClient := services.NewRedisClient(log)

	// Services
	log.Info("Setting up Services from main...")
	auditService := services.NewAuditService(thePG, log, auditLogRepo)
	quotaService := services.NewQuotaService(thePG, log, redisClient, llmUsageRepo)
	exportService := services.NewExportService(log, bucket)
	roadmapService := services.NewRoadmapService(thePG, log, projectRepo, versionRepo, openaiClient, quotaService, auditService, exportService)
	insightService := services.NewInsightService(thePG, log, projectRepo, transcriber, openaiClient, quotaService, auditService)
	authService := services.NewAuthService(log, jwtSecretKey)

	// Handlers
	log.Info("Setting up handlers from main...")
	roadmapHandler := handlers.NewRoadmapHandler(log, roadmapService)
	insightHandler := handlers.NewInsightHandler(log, insightService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		RoadmapHandler: roadmapHandler,
		InsightHandler: insightHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
