package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vaultflow/internal/config"
	"vaultflow/internal/database"
	"vaultflow/internal/logger"
	"vaultflow/internal/server"
	"vaultflow/internal/validator"
)

// @title           Vaultflow API
// @version         1.0
// @description     Vaultflow builds, countersigns and reconciles vault transactions and settles expansion claims.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.Register()

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	gateway, err := server.NewGateway(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create chain gateway: %w", err)
	}
	defer func() { _ = gateway.Close() }()

	app, err := server.NewApp(dbManager.DB(), appConfig, gateway)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	sqlDB, err := dbManager.DB().DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	handler := server.NewRouter(app, server.RouterOptions{
		PipelineAPIKey: appConfig.PipelineAPIKey,
		CORSOrigins:    appConfig.CORSOrigins,
		Ping:           sqlDB.PingContext,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Vaultflow API on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
