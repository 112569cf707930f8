package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/adapters/event"
	httpAdapter "github.com/khoahotran/devprofile/adapters/http"
	"github.com/khoahotran/devprofile/adapters/llm"
	"github.com/khoahotran/devprofile/adapters/media_storage"
	"github.com/khoahotran/devprofile/adapters/persistence"
	"github.com/khoahotran/devprofile/internal/application/service"
	bioUC "github.com/khoahotran/devprofile/internal/application/usecase/bio"
	endorsementUC "github.com/khoahotran/devprofile/internal/application/usecase/endorsement"
	profileUC "github.com/khoahotran/devprofile/internal/application/usecase/profile"
	"github.com/khoahotran/devprofile/internal/config"
	"github.com/khoahotran/devprofile/pkg/logger"
	"github.com/khoahotran/devprofile/pkg/tracing"
)

const serviceName = "devprofile-api"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Start DevProfile API Server...", zap.String("env", cfg.App.Env))

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracing.NewTracerProvider(cfg, appLogger, serviceName)
	if err != nil {
		appLogger.Fatal("Cannot init tracer", err)
	}
	defer tracing.Shutdown(tp, appLogger)

	// Initialize dependencies
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = persistence.NewRedisClient(cfg, appLogger)
		if err != nil {
			appLogger.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var publisher service.EventPublisher = event.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Cannot init Kafka", err)
		}
		defer kafkaClient.Close()
		publisher = kafkaClient
	}

	var uploader service.Uploader
	if cfg.Cloudinary.CloudName != "" {
		uploader, err = media_storage.NewCloudinaryAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize uploader", err)
		}
	}

	// The bio helper treats a nil generator as "not configured".
	var generator service.LLMService
	if cfg.LLMEnabled() {
		generator, err = llm.NewOpenAILLMAdapter(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to initialize LLM adapter", err)
		}
	} else {
		appLogger.Info("No LLM api key configured, bios use templates")
	}

	// Repositories
	profileRepo := persistence.NewPostgresProfileRepo(dbPool, appLogger)
	endorsementRepo := persistence.NewPostgresEndorsementRepo(dbPool, appLogger)

	// Use Cases
	aggregator := profileUC.NewAggregator(profileRepo, appLogger)
	profileUseCase := profileUC.NewProfileUseCase(profileRepo, aggregator, uploader, publisher, appLogger)
	addEndorsementUseCase := endorsementUC.NewAddEndorsementUseCase(endorsementRepo, publisher, appLogger)
	listEndorsementsUseCase := endorsementUC.NewListEndorsementsUseCase(endorsementRepo, appLogger)
	feedUseCase := endorsementUC.NewFeedUseCase(profileRepo, endorsementRepo, cfg.App.PublicURL, appLogger)
	generateBioUseCase := bioUC.NewGenerateBioUseCase(generator, cfg.LLM.Timeout, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Profile:     httpAdapter.NewProfileHandler(profileUseCase),
		Endorsement: httpAdapter.NewEndorsementHandler(addEndorsementUseCase, listEndorsementsUseCase, feedUseCase, appLogger),
		Bio:         httpAdapter.NewBioHandler(generateBioUseCase),
	}

	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		ServiceName:    serviceName,
		AllowedOrigins: cfg.App.AllowedOrigins,
		RateLimit:      cfg.RateLimit.Limit,
		RateWindow:     cfg.RateLimit.Window,
	}, handlers, redisClient, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
