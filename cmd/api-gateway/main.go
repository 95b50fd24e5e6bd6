package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/retailops/inventory-recon-api/api/swagger"
	"github.com/retailops/inventory-recon-api/internal/catalog"
	"github.com/retailops/inventory-recon-api/internal/handler"
	"github.com/retailops/inventory-recon-api/internal/middleware"
	"github.com/retailops/inventory-recon-api/internal/models"
	"github.com/retailops/inventory-recon-api/internal/repository"
	"github.com/retailops/inventory-recon-api/internal/service"
	"github.com/retailops/inventory-recon-api/pkg/cache"
	"github.com/retailops/inventory-recon-api/pkg/config"
	"github.com/retailops/inventory-recon-api/pkg/database"
	"github.com/retailops/inventory-recon-api/pkg/export"
	"github.com/retailops/inventory-recon-api/pkg/logger"
	corsmiddleware "github.com/retailops/inventory-recon-api/pkg/middleware/cors"
	reqidmiddleware "github.com/retailops/inventory-recon-api/pkg/middleware/requestid"
)

// @title Inventory Reconciliation API
// @version 1.0.0
// @description Verification tickets, counting grants and count reconciliation
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// Redis is an accelerator, not a dependency. The API serves
		// uncached reads when it is down.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()

	txRunner := repository.NewTxRunner(db)
	ticketRepo := repository.NewTicketRepository(db)
	countRepo := repository.NewCountRepository(db)
	grantRepo := repository.NewAssignmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	catalogClient := catalog.NewClient(cfg.Catalog, logr)

	metricsService := service.NewMetricsService()
	cacheService := service.NewCacheService(cacheRepo, metricsService, cfg.Dashboard.CacheTTL, logr, redisClient != nil)
	assignmentService := service.NewAssignmentService(grantRepo, userRepo, historyRepo, txRunner, validate, logr)
	ticketService := service.NewTicketService(
		ticketRepo, historyRepo, userRepo, catalogClient, assignmentService,
		txRunner, cacheService, metricsService, validate, logr)
	countService := service.NewCountService(
		countRepo, ticketRepo, historyRepo, historyRepo, catalogClient,
		txRunner, cacheService, metricsService, validate, logr)
	dashboardService := service.NewDashboardService(dashboardRepo, cacheService, cfg.Dashboard.CacheTTL, logr)
	exportService := service.NewExportService(countRepo, export.NewCSVExporter(), export.NewPDFExporter(), cfg.Exports.MaxRows, logr)

	ticketHandler := handler.NewTicketHandler(ticketService)
	countHandler := handler.NewCountHandler(countService)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	exportHandler := handler.NewExportHandler(exportService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.Auth(cfg.JWT.Secret))
	{
		tickets := api.Group("/tickets")
		{
			tickets.POST("", ticketHandler.Create)
			tickets.GET("", ticketHandler.List)
			tickets.GET("/number/:number", ticketHandler.GetByNumber)
			tickets.GET("/:id", ticketHandler.Get)
			tickets.PATCH("/:id/status", ticketHandler.UpdateStatus)
			tickets.POST("/:id/close", ticketHandler.Close)
			tickets.POST("/:id/comments", ticketHandler.AddComment)
			tickets.GET("/:id/history", ticketHandler.History)
			tickets.PATCH("/:id/codes/:codeId/status", ticketHandler.UpdateCodeStatus)
			tickets.PUT("/:id/codes/:codeId/assign", ticketHandler.AssignCode)
			tickets.POST("/:id/counts/materialize", countHandler.Materialize)
			tickets.GET("/:id/counts", countHandler.ListByTicket)
		}

		counts := api.Group("/counts")
		{
			counts.GET("", countHandler.List)
			counts.POST("/batch", countHandler.BatchRegister)
			counts.GET("/:id", countHandler.Get)
			counts.PUT("/:id/register", countHandler.Register)
			counts.PATCH("/:id/status", countHandler.UpdateStatus)
			counts.POST("/:id/comments", countHandler.AddComment)
			counts.GET("/:id/history", countHandler.History)
		}

		assignments := api.Group("/assignments")
		{
			assignments.GET("", assignmentHandler.List)
			admin := assignments.Group("")
			admin.Use(middleware.RequireProfile(models.ProfileAdministrador, models.ProfileLider))
			{
				admin.POST("", assignmentHandler.Create)
				admin.DELETE("/:id", assignmentHandler.Remove)
			}
		}

		if cfg.Dashboard.Enabled {
			api.GET("/dashboard", dashboardHandler.Get)
		}
		if cfg.Exports.Enabled {
			api.GET("/exports/counts", exportHandler.ExportCounts)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
