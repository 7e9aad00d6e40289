package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ahmadsanny2/chat-ai/internal/chat"
	"github.com/ahmadsanny2/chat-ai/internal/config"
	"github.com/ahmadsanny2/chat-ai/internal/db"
	apihttp "github.com/ahmadsanny2/chat-ai/internal/http"
	"github.com/ahmadsanny2/chat-ai/internal/llm"
	"github.com/ahmadsanny2/chat-ai/internal/store"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Estrategia de persistencia elegida en construccion: Postgres si hay
	// DATABASE_URL, archivo local si no.
	var sessionStore store.Store
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		sessionStore = store.NewPgStore(pool)
		logger.Info("using postgres session store")
	} else {
		sessionStore = store.NewFileStore(cfg.StorePath)
		logger.Info("using local file session store", zap.String("path", cfg.StorePath))
	}

	sessions, err := store.Bootstrap(ctx, sessionStore, logger)
	if err != nil {
		logger.Fatal("bootstrap sessions", zap.Error(err))
	}

	gateway := llm.NewOpenAIGateway(cfg.LLMBaseURL, cfg.OpenAIAPIKey, cfg.LLMModel, logger)
	images := llm.NewOpenAIImageGateway(cfg.LLMBaseURL, cfg.OpenAIAPIKey)

	controller := chat.NewController(sessionStore, gateway, logger, sessions, chat.ControllerOptions{
		HistoryLimit: cfg.HistoryLimit,
		TurnTimeout:  time.Duration(cfg.TurnTimeoutSeconds) * time.Second,
	})

	var limiter apihttp.RateLimiter
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			limiter = apihttp.NewRedisRateLimiter(
				redisClient,
				time.Duration(cfg.ChatRateWindowSeconds)*time.Second,
				cfg.ChatRateMax,
			)
		}
		cancel()
	}

	chatHandler := apihttp.NewChatHandler(logger, gateway, images)
	sessionHandler := apihttp.NewSessionHandler(logger, controller)
	router := apihttp.NewRouter(logger, chatHandler, sessionHandler, limiter)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
