package main

import (
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"colistrack/internal/auth"
	"colistrack/internal/cache"
	"colistrack/internal/config"
	"colistrack/internal/db"
	"colistrack/internal/events"
	"colistrack/internal/handler"
	"colistrack/internal/logger"
	"colistrack/internal/model"
	"colistrack/internal/repository"
	"colistrack/internal/router"
	"colistrack/internal/service"
	"colistrack/internal/storage"
)

// @title ColisTrack API
// @version 1.0
// @description Multi-tenant package tracking API with JWT authentication and role-based access.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	appLog, err := logger.New(cfg.LogsDir)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer appLog.Sync()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if os.Getenv("RESET_DB") == "true" {
		appLog.Warn("RESET_DB=true detected, dropping all tables")
		tables := []interface{}{
			&model.Attachment{},
			&model.TrackingEvent{},
			&model.Package{},
			&model.User{},
		}
		for _, table := range tables {
			if err := gormDB.Migrator().DropTable(table); err != nil {
				appLog.Warn("drop table failed (may not exist)", zap.Error(err))
			}
		}
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Package{},
		&model.TrackingEvent{},
		&model.Attachment{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	blobStore, err := storage.NewStore(cfg.StorageDir)
	if err != nil {
		log.Fatalf("storage init: %v", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	packageRepo := repository.NewPackageRepository(gormDB)
	eventRepo := repository.NewTrackingEventRepository(gormDB)
	attachmentRepo := repository.NewAttachmentRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	bus := events.NewBus(cacheClient, appLog)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cacheClient)
	packageService := service.NewPackageService(packageRepo, eventRepo, userRepo, bus)
	attachmentService := service.NewAttachmentService(attachmentRepo, packageRepo, blobStore)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	packageHandler := handler.NewPackageHandler(packageService)
	attachmentHandler := handler.NewAttachmentHandler(attachmentService, packageService)

	// Register routes
	router.Register(
		e,
		cfg,
		tokenStore,
		authHandler,
		packageHandler,
		attachmentHandler,
	)

	appLog.Info("server starting", zap.String("port", cfg.ServerPort))
	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
