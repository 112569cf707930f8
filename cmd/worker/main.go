package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/devprofile/adapters/event"
	"github.com/khoahotran/devprofile/adapters/persistence"
	"github.com/khoahotran/devprofile/internal/application/service"
	endorsementUC "github.com/khoahotran/devprofile/internal/application/usecase/endorsement"
	"github.com/khoahotran/devprofile/internal/config"
	"github.com/khoahotran/devprofile/pkg/apperror"
	"github.com/khoahotran/devprofile/pkg/logger"
	"github.com/khoahotran/devprofile/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: cannot load config: %v", err)
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting DevProfile Worker...")

	if len(cfg.Kafka.Brokers) == 0 {
		appLogger.Fatal("Worker needs Kafka brokers", errors.New("KAFKA_BROKERS is empty"))
	}

	tp, err := tracing.NewTracerProvider(cfg, appLogger, "devprofile-worker")
	if err != nil {
		appLogger.Fatal("Cannot init tracer", err)
	}
	defer tracing.Shutdown(tp, appLogger)

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	endorsementRepo := persistence.NewPostgresEndorsementRepo(dbPool, appLogger)
	reconcileUC := endorsementUC.NewReconcileUseCase(endorsementRepo, appLogger)

	// Kafka Consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    event.TopicProfileEvents,
		GroupID:  "endorsement-reconciler-group",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening", zap.String("topic", event.TopicProfileEvents))
	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		evt, err := event.Decode(msg)
		if err != nil {
			appLogger.Warn("Skipping malformed event", zap.Error(err), zap.String("key", string(msg.Key)))
			commitMessage(consumer, msg, appLogger)
			continue
		}

		if evt.Type == service.EventEndorsementAdded {
			profileID, err := uuid.Parse(evt.ProfileID)
			if err != nil {
				appLogger.Warn("Skipping event with invalid profile id", zap.String("profile_id", evt.ProfileID))
				commitMessage(consumer, msg, appLogger)
				continue
			}

			out, err := reconcileUC.Execute(ctx, endorsementUC.ReconcileInput{ProfileID: profileID})
			switch {
			case errors.Is(err, apperror.ErrNotFound):
				appLogger.Info("Profile gone, nothing to reconcile", zap.String("profile_id", evt.ProfileID))
			case err != nil:
				appLogger.Error("Failed to reconcile endorsements", err, zap.String("profile_id", evt.ProfileID))
				continue
			default:
				appLogger.Info("Reconciled endorsements", zap.String("profile_id", evt.ProfileID), zap.Int("total", out.TotalEndorsements))
			}
		}

		commitMessage(consumer, msg, appLogger)
	}
}

func commitMessage(consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(context.Background(), msg); err != nil {
		log.Error("Failed to commit message", err)
	}
}
