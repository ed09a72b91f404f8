package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"vaultflow/internal/config"
	"vaultflow/internal/database"
	"vaultflow/internal/logger"
	"vaultflow/internal/server"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() { _ = dbManager.Close() }()

	gateway, err := server.NewGateway(cfg)
	if err != nil {
		return fmt.Errorf("failed to create chain gateway: %w", err)
	}
	defer func() { _ = gateway.Close() }()

	app, err := server.NewApp(dbManager.DB(), cfg, gateway)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Get().Infof("Starting sweep worker every %s", cfg.SweepInterval)
	server.NewSweeper(app.Transactions, app.Distribution, cfg.SweepInterval).Run(ctx)
	return nil
}
