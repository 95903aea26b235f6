package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/hippocampus-web3/thorchain-indexer/internal/config"
	"github.com/hippocampus-web3/thorchain-indexer/internal/handler"
	"github.com/hippocampus-web3/thorchain-indexer/internal/indexer"
	"github.com/hippocampus-web3/thorchain-indexer/internal/logger"
	"github.com/hippocampus-web3/thorchain-indexer/internal/memo"
	"github.com/hippocampus-web3/thorchain-indexer/internal/midgard"
	"github.com/hippocampus-web3/thorchain-indexer/internal/notify"
	"github.com/hippocampus-web3/thorchain-indexer/internal/registry"
	"github.com/hippocampus-web3/thorchain-indexer/internal/repository"
	"github.com/hippocampus-web3/thorchain-indexer/internal/router"
	"github.com/hippocampus-web3/thorchain-indexer/internal/task"
	"github.com/hippocampus-web3/thorchain-indexer/internal/thornode"
)

func main() {
	cfg := config.Load()

	initLogger(cfg.Log)
	defer logger.Sync()

	logger.Info("Starting thorchain-indexer")

	gin.SetMode(cfg.Server.Mode)

	db, err := repository.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}
	store := repository.NewStore(db)

	thornodeClient := thornode.NewClient(cfg.Thornode)
	reg := registry.NewCache(thornodeClient)
	feed := midgard.NewClient(cfg.Midgard)

	var publisher notify.Publisher = notify.NopPublisher{}
	var worker *notify.Worker
	if cfg.Notify.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		publisher = notify.NewQueue(rdb, cfg.Notify.Queue)
		worker = notify.NewWorker(rdb, cfg.Notify.Queue, cfg.Notify.WebhookUrl)
	}

	parsers := memo.NewParsers(reg, store, cfg.Indexer.MinUserMessageAmount)

	ix, err := indexer.New(feed, store, parsers, cfg.Indexer.Sources, publisher, cfg.Indexer.Concurrency)
	if err != nil {
		logger.Fatal("Failed to initialize indexer: %v", err)
	}
	defer ix.Release()

	manager, err := task.NewManager()
	if err != nil {
		logger.Fatal("Failed to initialize task manager: %v", err)
	}
	manager.Register(task.NewIndexerJob(ix, cfg.Indexer))
	manager.Register(task.NewWhitelistStatusJob(reg, store.Requests, publisher, cfg.Whitelist))
	manager.Start()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if worker != nil {
		go worker.Run(ctx)
	}

	engine := router.Setup(
		handler.NewNodeHandler(store.Listings, reg),
		handler.NewWhitelistHandler(store.Requests),
		handler.NewChatHandler(store.Messages),
		handler.NewStatsHandler(store.Listings, store.Requests, store.Messages),
		handler.NewSubscriptionHandler(store.Subscriptions),
	)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: engine,
	}

	go func() {
		logger.Info("HTTP server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	// Stop the scheduler first so in-flight batches finish and cursors land
	// before anything else is torn down.
	manager.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error: %v", err)
	}

	logger.Info("Shutdown complete")
}

func initLogger(cfg config.LogConfig) {
	level := logger.ParseLogLevel(cfg.Level)

	if cfg.Output == "file" {
		l, err := logger.NewWithRotation(level, logger.RotationConfig{
			Filename: cfg.File,
			Compress: true,
		})
		if err != nil {
			logger.Fatal("Failed to initialize file logger: %v", err)
		}
		logger.SetDefaultLogger(l)
		return
	}

	l, err := logger.New(level)
	if err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(l)
}
