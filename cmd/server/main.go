package main

import (
	"context"
	"log"

	"github.com/MarwanIssa100/SparkUp/internal/chain"
	"github.com/MarwanIssa100/SparkUp/internal/config"
	"github.com/MarwanIssa100/SparkUp/internal/handler"
	"github.com/MarwanIssa100/SparkUp/internal/ledger"
	"github.com/MarwanIssa100/SparkUp/internal/logger"
	"github.com/MarwanIssa100/SparkUp/internal/router"
	"github.com/MarwanIssa100/SparkUp/internal/state"
	"github.com/MarwanIssa100/SparkUp/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()

	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	chainClient, err := chain.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}

	store := state.NewStore()

	reader, err := ledger.NewReader(chainClient, cfg.Policy.FetchWorkers, cfg.Policy.FetchTimeout)
	if err != nil {
		logger.Fatal("Failed to initialize ledger reader: %v", err)
	}
	defer reader.Close()

	commander := state.NewCommander(store, chainClient, reader, cfg.Policy)

	// Warm the snapshot before serving; a failure is just the error
	// banner, not fatal.
	if err := reader.Refresh(context.Background(), store); err != nil {
		logger.Warn("Initial snapshot fetch failed: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	ideaHandler := handler.NewIdeaHandler(store, commander, reader, chainClient)
	r := router.Setup(ideaHandler)

	manager := task.Start(reader, store, commander, cfg)
	defer manager.Stop()

	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
