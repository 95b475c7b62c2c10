package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"github.com/yudhap12/go-sipp-backend/internal/api/handlers"
	"github.com/yudhap12/go-sipp-backend/internal/config"
	"github.com/yudhap12/go-sipp-backend/internal/logging"
	"github.com/yudhap12/go-sipp-backend/internal/middleware"
	"github.com/yudhap12/go-sipp-backend/internal/repository"
	"github.com/yudhap12/go-sipp-backend/internal/service"
	"github.com/yudhap12/go-sipp-backend/internal/sipp"
)

func main() {

	// LOAD ENV
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed load config:", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)

	// INIT DB
	repo, err := repository.NewPostgresRepoFromConfig(cfg)
	if err != nil {
		log.Fatal("failed connect DB:", err)
	}

	// MIGRATIONS
	if err := repo.RunMigrations(context.Background()); err != nil {
		log.Fatal("migration error:", err)
	}

	// ADMIN SEED
	hashed, _ := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err := repo.UpsertAdmin(context.Background(), cfg.AdminUsername, string(hashed)); err != nil {
		logger.Warnf("failed seeding admin: %v", err)
	} else {
		logger.Info("admin seeded OK")
	}

	// SERVICES
	sippClient := sipp.NewClient(cfg.SippBaseURL, cfg.SippAPIToken, logger)
	notifier := service.NewAdminNotifier(repo, logger, cfg.NotificationsEnabled)
	syncService := service.NewSyncService(
		sippClient, repo, notifier, logger,
		cfg.SyncBatchSize, service.ParseStrategy(cfg.ConflictResolution),
	)
	statsService := service.NewStatisticsService(repo)

	// HANDLERS
	authHandler := handlers.NewAuthHandler(repo, cfg.JWTSecret)
	syncHandler := handlers.NewSyncHandler(syncService, repo, logger)
	caseHandler := handlers.NewCaseHandler(repo, statsService)

	// ROUTER
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	api := r.Group("/api/v1")

	// AUTH ROUTES
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}

	// SYNC ROUTES (admin only)
	sync := api.Group("/sync")
	sync.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		sync.POST("/full", syncHandler.TriggerFullSync)
		sync.POST("/incremental", syncHandler.TriggerIncrementalSync)
		sync.GET("/status", syncHandler.GetSyncStatus)
		sync.GET("/history", syncHandler.GetSyncHistory)
	}

	// PUBLIC READ ROUTES
	api.GET("/cases", caseHandler.ListCases)
	api.GET("/cases/:number", caseHandler.GetCaseByNumber)
	api.GET("/schedules", caseHandler.ListSchedules)
	api.GET("/judges", caseHandler.ListJudges)
	api.GET("/court-rooms", caseHandler.ListCourtRooms)
	api.GET("/case-types", caseHandler.ListCaseTypes)
	api.GET("/statistics/cases", caseHandler.GetCaseStatistics)

	// START SERVER
	logger.Info("Server running on port: ", cfg.Port)
	r.Run(":" + cfg.Port)
}
