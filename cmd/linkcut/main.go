package main

import (
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/avoronin/linkcut/internal/cache"
	"github.com/avoronin/linkcut/internal/clicks"
	"github.com/avoronin/linkcut/internal/config"
	"github.com/avoronin/linkcut/internal/handler"
	"github.com/avoronin/linkcut/internal/middleware"
	"github.com/avoronin/linkcut/internal/repository"
	"github.com/avoronin/linkcut/internal/service"
)

// store is the union of everything the services need from persistence.
type store interface {
	service.LinkStore
	service.TagStore
	handler.Pinger
	Close() error
}

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	sugar := logger.Sugar()

	if err := godotenv.Load(".env"); err != nil {
		sugar.Debugw("No .env file found, relying on environment", "error", err.Error())
	}

	cfg, err := config.ParseFlags()
	if err != nil {
		sugar.Fatalw("Configuration error", "error", err.Error())
	}

	sugar.Infow("Configuration loaded",
		"server_address", cfg.ServerAddress,
		"base_url", cfg.BaseURL,
		"database", cfg.DatabaseDSN != "",
		"cache", cfg.RedisAddr != "",
		"click_queue", cfg.RabbitMQURL != "",
	)

	repo := newStore(cfg, logger, sugar)
	defer repo.Close()

	var resolutionCache service.ResolutionCache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			// The cache is advisory; the service runs store-only without it.
			sugar.Errorw("Failed to connect to Redis, running without cache", "error", err.Error())
		} else {
			defer redisCache.Close()
			resolutionCache = redisCache
			sugar.Infow("Resolution cache enabled", "address", cfg.RedisAddr)
		}
	}

	var publisher service.ClickPublisher
	if cfg.RabbitMQURL != "" {
		clickPublisher, err := clicks.NewPublisher(cfg.RabbitMQURL, cfg.ClickQueue, logger)
		if err != nil {
			sugar.Errorw("Failed to connect to RabbitMQ, click events disabled", "error", err.Error())
		} else {
			defer clickPublisher.Close()
			publisher = clickPublisher
			sugar.Infow("Click event publishing enabled", "queue", cfg.ClickQueue)
		}
	}

	linkService := service.NewLinkService(repo, resolutionCache, publisher, cfg.CacheTTL, logger)
	tagService := service.NewTagService(repo, repo, logger)

	auth := middleware.NewAuthMiddleware(cfg.AuthSecret, logger)
	h := handler.NewHandler(linkService, tagService, auth, repo, cfg.BaseURL, logger)

	r := h.SetupRouter()

	sugar.Infow("Server starting", "address", cfg.ServerAddress)

	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		sugar.Fatalw(err.Error(), "event", "start server")
	}
}

func newStore(cfg *config.Config, logger *zap.Logger, sugar *zap.SugaredLogger) store {
	if cfg.DatabaseDSN == "" {
		sugar.Infow("No database DSN configured, using in-memory store")
		return repository.NewMemoryRepository()
	}

	repo, err := repository.NewPostgresRepository(cfg.DatabaseDSN, logger)
	if err != nil {
		sugar.Fatalw("Failed to initialize PostgreSQL repository", "error", err.Error())
	}
	return repo
}
