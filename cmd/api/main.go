package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/bandwise/bandwise-go-api/internal/config"
	"github.com/bandwise/bandwise-go-api/internal/database"
	"github.com/bandwise/bandwise-go-api/internal/handler"
	"github.com/bandwise/bandwise-go-api/internal/middleware"
	"github.com/bandwise/bandwise-go-api/internal/models"
	"github.com/bandwise/bandwise-go-api/internal/repository"
	"github.com/bandwise/bandwise-go-api/internal/router"
	"github.com/bandwise/bandwise-go-api/internal/service"
	"github.com/bandwise/bandwise-go-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Redis backs the result cache, the async job store, and rate limiting.
	// The service still runs without it: caching degrades to always-compute
	// and async scoring is disabled.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, caching and async scoring disabled")
		} else {
			redisClient = client
			defer client.Close()
		}
	} else {
		logger.Warn().Msg("no redis url configured, caching and async scoring disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	var history service.ScoreHistoryService
	if cfg.DatabaseURL != "" {
		db, err := database.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		if err := db.AutoMigrate(&models.ScoreRecord{}); err != nil {
			log.Fatalf("failed to migrate database: %v", err)
		}
		history = service.NewScoreHistoryService(repository.NewScoreRecordRepository(db), service.StubPredictiveModel{}, logger)
	} else {
		logger.Info().Msg("no database url configured, score history disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		conn, err := nats.Connect(cfg.NATSURL)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, async jobs run in-process")
		} else {
			natsConn = conn
			defer conn.Close()
		}
	}

	registry := ai.NewRegistry(
		ai.NewOpenAIScorer(ai.OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.ScoreTimeout,
			Logger:  logger,
		}),
		ai.NewAnthropicScorer(ai.AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   cfg.AnthropicModel,
			Timeout: cfg.ScoreTimeout,
			Logger:  logger,
		}),
	)

	resultCache := service.NewResultCache(redisClient, cfg.CacheTTL, logger)
	scoringService := service.NewScoringService(registry, resultCache, history, validate, logger, cfg.BatchMaxConcurrent)

	var asyncService service.AsyncScoringService
	if redisClient != nil {
		asyncService = service.NewAsyncScoringService(redisClient, natsConn, scoringService, validate, logger, cfg.JobTTL, cfg.AsyncRatePerMinute, cfg.ScoreTimeout)
	}

	scoringHandler := handler.NewScoringHandler(scoringService, asyncService, history, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ScoringHandler: scoringHandler,
		RateLimiter:    middleware.RateLimit("scoring", 60, time.Minute),
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if asyncService != nil {
		go func() {
			if err := asyncService.Start(workerCtx); err != nil {
				logger.Error().Err(err).Msg("async worker stopped")
			}
		}()
	}

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopWorkers)
}

func waitForShutdown(app *fiber.App, stopWorkers context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
