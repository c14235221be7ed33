package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/opendatahub/dataset-api/internal/api/handler"
	"github.com/opendatahub/dataset-api/internal/api/middleware"
	"github.com/opendatahub/dataset-api/internal/core/domain"
	"github.com/opendatahub/dataset-api/internal/core/ports"
	"github.com/opendatahub/dataset-api/internal/core/service"
	"github.com/opendatahub/dataset-api/internal/infrastructure/config"
	mongodb "github.com/opendatahub/dataset-api/internal/infrastructure/db/mongo"
	redisdb "github.com/opendatahub/dataset-api/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, store ports.FileStore, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("datasethub"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	datasetRepo := mongodb.NewDatasetRepository(db)
	downloadLogRepo := mongodb.NewDownloadLogRepository(db)

	authService := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	datasetService := service.NewDatasetService(datasetRepo, downloadLogRepo, store, log)

	authHandler := handler.NewAuthHandler(authService)
	datasetHandler := handler.NewDatasetHandler(datasetService)

	auth := middleware.Auth(cfg.JWTSecret, userRepo)
	limiter := redisdb.NewFixedWindowLimiter(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	rateLimited := middleware.RateLimit(limiter, log)
	bodyLimit := echomiddleware.BodyLimit(cfg.MaxUpload)

	// --- Auth routes ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)

	// --- Dataset routes ---
	datasets := e.Group("/api/datasets", auth)
	datasets.GET("/featured", datasetHandler.Featured)
	datasets.GET("", datasetHandler.List, rateLimited)
	datasets.GET("/:id", datasetHandler.Get)
	datasets.GET("/:id/download", datasetHandler.Download)
	datasets.POST("/upload", datasetHandler.Upload,
		middleware.RBAC(domain.RoleAdmin, domain.RoleAnalyst), bodyLimit)
	datasets.PATCH("/:id", datasetHandler.Update,
		middleware.RBAC(domain.RoleAdmin))
	datasets.POST("/:id/update-with-file", datasetHandler.UpdateWithFile,
		middleware.RBAC(domain.RoleAdmin), bodyLimit)
	datasets.DELETE("/:id", datasetHandler.Delete,
		middleware.RBAC(domain.RoleAdmin))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
