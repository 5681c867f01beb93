package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/studylane/examboard-api/api/swagger"
	"github.com/studylane/examboard-api/internal/handler"
	"github.com/studylane/examboard-api/internal/middleware"
	"github.com/studylane/examboard-api/internal/models"
	"github.com/studylane/examboard-api/internal/repository"
	"github.com/studylane/examboard-api/internal/service"
	"github.com/studylane/examboard-api/pkg/cache"
	"github.com/studylane/examboard-api/pkg/config"
	"github.com/studylane/examboard-api/pkg/database"
	"github.com/studylane/examboard-api/pkg/jobs"
	"github.com/studylane/examboard-api/pkg/logger"
	corsmiddleware "github.com/studylane/examboard-api/pkg/middleware/cors"
	reqidmiddleware "github.com/studylane/examboard-api/pkg/middleware/requestid"
)

// @title Examboard API
// @version 1.0.0
// @description Department-scoped exam leaderboard computation and caching service
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	attemptRepo := repository.NewAttemptRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	cacheRepo := repository.NewLeaderboardCacheRepository(redisClient, logr)
	defer cacheRepo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewLeaderboardCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr)

	guard := service.NewAccessGuard(userRepo, auditRepo, logr)
	guard.StartAuditWorker(ctx, jobs.QueueConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.QueueSize,
		Logger:     logr,
	})
	defer guard.StopAuditWorker()

	leaderboardSvc := service.NewLeaderboardService(service.LeaderboardServiceParams{
		Guard:       guard,
		Roster:      userRepo,
		Attempts:    attemptRepo,
		Departments: departmentRepo,
		Profiles:    userRepo,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Logger:      logr,
	})
	if cfg.Leaderboard.SweepEnabled {
		leaderboardSvc.StartSweep(ctx, cfg.Leaderboard.SweepInterval)
	}

	authSvc := service.NewAuthService(cfg.JWT.Secret)

	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)
	adminHandler := handler.NewAdminCacheHandler(leaderboardSvc)
	eventHandler := handler.NewAttemptEventHandler(leaderboardSvc, cfg.Events.WebhookToken)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		authed := api.Group("", middleware.JWT(authSvc))
		authed.GET("/departments/:departmentId/leaderboard", leaderboardHandler.Department)
		authed.GET("/leaderboard/departments", leaderboardHandler.Global)

		admin := authed.Group("/admin", middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
		admin.POST("/cache/refresh", adminHandler.Refresh)
		admin.GET("/cache/status", adminHandler.Status)
		admin.DELETE("/cache/:departmentId", adminHandler.Reset)

		api.POST("/events/attempts", eventHandler.AttemptChanged)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
