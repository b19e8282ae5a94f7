package main

import (
	"log"
	"time"

	"tracking-bot/internal/core/cache"
	"tracking-bot/internal/core/config"
	"tracking-bot/internal/core/logger"
	"tracking-bot/internal/core/server"
	conversationadapter "tracking-bot/internal/features/conversation/adapters"
	conversationhandler "tracking-bot/internal/features/conversation/handler"
	conversationservice "tracking-bot/internal/features/conversation/service"
	trackingadapter "tracking-bot/internal/features/tracking/adapters"
	"tracking-bot/internal/features/tracking/ports"
	trackingservice "tracking-bot/internal/features/tracking/service"

	"go.uber.org/zap"
)

// @title Tracking Bot API
// @version 1.0
// @description Conversational registration and status lookup for shipment tracking numbers.
// @contact.name API Support
// @contact.email support@trackingbot.dev
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// The status cache runs on Redis when a URL is configured, otherwise in
	// process memory.
	var statusCache cache.Cache
	if cfg.Registry.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Registry.RedisURL)
		if err != nil {
			l.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		statusCache = redisCache
		l.Info("Using Redis cache", zap.String("backend", cfg.Registry.Backend))
	} else {
		statusCache = cache.NewMemoryAdapter()
		l.Info("Using in-memory cache")
	}
	defer statusCache.Close()

	// Select the durable registry store.
	var store ports.RegistryStore
	switch cfg.Registry.Backend {
	case "redis":
		if cfg.Registry.RedisURL == "" {
			l.Fatal("REGISTRY_BACKEND is redis but REGISTRY_REDIS_URL is not set")
		}
		store = trackingadapter.NewCacheStore(statusCache)
	default:
		store = trackingadapter.NewFileStore(cfg.Registry.FilePath)
	}

	registry := trackingservice.NewRegistry(store)

	provider := trackingadapter.NewTrackingMoreAdapter(cfg.Provider)
	statuses := trackingservice.NewStatusService(
		provider,
		statusCache,
		time.Duration(cfg.Provider.CacheTTLSeconds)*time.Second,
	)

	messenger := conversationadapter.NewGatewayMessenger(cfg.Gateway)

	sessions := conversationservice.NewSessionManager(
		messenger,
		registry,
		statuses,
		time.Duration(cfg.SessionTimeoutSeconds)*time.Second,
		cfg.CommandPrefix+"register",
	)

	dispatcher := conversationservice.NewDispatcher(
		cfg.CommandPrefix,
		sessions,
		registry,
		statuses,
		messenger,
	)

	messageHandler := conversationhandler.NewMessageHandler(dispatcher, registry)

	srv := server.New(cfg)
	srv.App.Post("/messages", messageHandler.HandleMessage)
	srv.App.Get("/users/:id/trackings", messageHandler.ListTrackings)

	if err := srv.Run(); err != nil {
		l.Fatal("Server stopped", zap.Error(err))
	}
}
