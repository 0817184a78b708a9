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

	"github.com/RishiKendai/veritext/internal/api"
	"github.com/RishiKendai/veritext/internal/config"
	"github.com/RishiKendai/veritext/internal/configs/env"
	"github.com/RishiKendai/veritext/internal/infra/mongo"
	redisInfra "github.com/RishiKendai/veritext/internal/infra/redis"
	"github.com/RishiKendai/veritext/internal/logger"
	"github.com/RishiKendai/veritext/internal/metrics"
	"github.com/RishiKendai/veritext/internal/plagiarism"
	"github.com/RishiKendai/veritext/internal/repository"
	"github.com/RishiKendai/veritext/internal/stopwords"
	"github.com/RishiKendai/veritext/internal/stream"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := env.LoadEnv(); err != nil {
		log.Warn().Err(err).Msg("Failed to load .env file, continuing with system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log.Info().Msg("Starting similarity server")

	metrics.InitPrometheus()
	log.Info().Msg("Prometheus metrics initialized")

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", metrics.MetricsHandler())
	metricsServer := api.StartServer(metricsMux, cfg.MetricsPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop words: named Mongo set, file, or built-in list
	source := stopwords.Source{
		SetName: cfg.StopwordsSetName,
		File:    cfg.StopwordsFile,
	}
	if cfg.MongoURI != "" {
		mongoClient, err := mongo.NewClient(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create MongoDB client")
		}
		defer mongoClient.Close(context.Background())

		stopwordsRepo := repository.NewStopwordsRepository(repository.NewMongoRepository(mongoClient))
		source.Sets = stopwordsRepo

		if names, err := stopwordsRepo.ListSetNames(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to list stop-word sets")
		} else {
			log.Info().Strs("sets", names).Msg("Stop-word sets available")
		}
	}

	words, err := stopwords.Load(ctx, source)
	if err != nil {
		if errors.Is(err, repository.ErrStopwordSetNotFound) {
			log.Fatal().Err(err).Str("set", cfg.StopwordsSetName).Msg("Configured stop-word set does not exist")
		}
		log.Fatal().Err(err).Msg("Failed to load stop words")
	}

	opts, err := cfg.EngineOptions(words)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid engine configuration")
	}
	engine, err := plagiarism.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create similarity engine")
	}
	log.Info().
		Int("score_ngram_size", opts.ScoreNgramSize).
		Int("match_ngram_size", opts.MatchNgramSize).
		Int("stopwords", opts.Stopwords.Len()).
		Str("match_mode", string(opts.MatchMode)).
		Msg("Similarity engine ready")

	workerPool := plagiarism.NewWorkerPool(ctx, cfg.WorkerPoolSize)

	// Async jobs are optional and need Redis
	var jobs api.JobQueue
	if cfg.RedisEnabled() {
		redisClient, err := redisInfra.NewClient(ctx, cfg.RedisHost, cfg.RedisPassword, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create Redis client")
		}
		defer func() {
			// Runs after the pool has drained below
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing Redis client")
			}
		}()

		jobStore := stream.NewJobStore(redisClient.Client, cfg.RedisStreamKey, cfg.JobResultTTL)
		jobs = jobStore

		retryHandler := stream.NewRetryHandler(redisClient.Client, cfg.RedisDeadLetterKey)

		hostname, _ := os.Hostname()
		if hostname == "" {
			hostname = "unknown"
		}
		consumerName := fmt.Sprintf("consumer-%s-%d-%s", hostname, os.Getpid(), uuid.New().String()[:8])
		consumer := stream.NewConsumer(
			redisClient.Client,
			cfg.RedisStreamKey,
			cfg.RedisConsumerGroup,
			consumerName,
			engine,
			workerPool,
			jobStore,
			retryHandler,
			cfg.StreamRetentionDuration,
		)
		log.Info().Str("consumer_name", consumerName).Msg("Redis stream consumer initialized")

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("Redis consumer error")
			}
		}()
		log.Info().Msg("Redis consumer started")
	} else {
		log.Info().Msg("REDIS_HOST not set, async jobs disabled")
	}

	rateLimiter := api.NewRateLimiter(cfg.RateLimitRPS, int(cfg.RateLimitRPS*2))
	go rateLimiter.RunCleanup(ctx, time.Minute, 10*time.Minute)

	router := api.SetupRoutes(cfg, engine, workerPool, jobs, rateLimiter)

	srv := api.StartServer(router, cfg.ServerPort)

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down gracefully...")

	if err := api.ShutdownServer(srv, 30*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down Gin server")
	}

	// Queued jobs still write results and ack through Redis, so the pool
	// drains before the consumer stops and the Redis client closes
	workerPool.Close()
	cancel()

	if err := api.ShutdownServer(metricsServer, 5*time.Second); err != nil {
		log.Error().Err(err).Msg("Error shutting down metrics server")
	}

	log.Info().Msg("Shutdown complete")
}
