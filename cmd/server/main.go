package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"tasktracker/docs" // swagger docs
	"tasktracker/internal/auth"
	"tasktracker/internal/cache"
	"tasktracker/internal/config"
	"tasktracker/internal/db"
	"tasktracker/internal/handler"
	"tasktracker/internal/logger"
	"tasktracker/internal/mq"
	"tasktracker/internal/repository"
	"tasktracker/internal/router"
	"tasktracker/internal/service"
)

// @title Task Tracker API
// @version 1.0
// @description Multi-tenant project and task tracking with JWT authentication.
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		zl.Fatal("Database init failed", zap.Error(err))
	}

	if cfg.ResetDB {
		zl.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			zl.Warn("Failed to drop tables", zap.Error(err))
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		zl.Fatal("Auto-migrate failed", zap.Error(err))
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		zl.Warn("Redis unavailable, principal cache disabled", zap.Error(err))
		_ = cacheClient.Close()
		cacheClient = nil
	}
	cancelPing()

	var publisher mq.Publisher = mq.NoopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := mq.NewAMQPPublisher(cfg.AMQPURL)
		if err != nil {
			zl.Fatal("RabbitMQ init failed", zap.Error(err))
		}
		publisher = amqpPublisher
		zl.Info("Publishing domain events", zap.String("exchange", mq.ExchangeName))
	}
	defer publisher.Close()

	// Initialize repositories
	store := repository.NewStore(gormDB)

	// Initialize auth components
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	resolver := auth.NewPrincipalResolver(store.Users(), cacheClient)
	hasher := auth.NewBcryptHasher(0)

	// Initialize services
	authService := service.NewAuthService(store.Users(), hasher, tokens, publisher, zl)
	projectService := service.NewProjectService(store, publisher, zl)
	taskService := service.NewTaskService(store, publisher, zl)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestID())

	// Register routes
	router.Register(e, zl, tokens, resolver, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Projects: handler.NewProjectHandler(projectService),
		Tasks:    handler.NewTaskHandler(taskService),
	})

	if cfg.SwaggerHost != "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
		docs.SwaggerInfo.Host = host
	}
	zl.Info("Swagger documentation available", zap.String("url", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("Server start failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		zl.Error("Server shutdown failed", zap.Error(err))
	}
}
