package main

import (
	"context"
	"encoding/json"
	"log"

	awsevents "github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/domain/user"
	"github.com/example/storefront/internal/email"
	"github.com/example/storefront/internal/infrastructure/kinesis"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/notification"
	"go.uber.org/zap"
)

var (
	notificationHandler *notification.Handler
	logger              *zap.Logger
)

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err = logging.New("lambda-notifier", cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	db, err := store.ConnectPostgres(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}

	users := user.NewService(store.NewUserRepository(db), logger)
	mailer := email.NewService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.Currency)
	notificationHandler = notification.NewHandler(mailer, users, logger)

	logger.Info("initialized", zap.String("smtp", cfg.SMTPHost+":"+cfg.SMTPPort))
}

// handler reports failed records back to Lambda so only those are retried.
func handler(ctx context.Context, kinesisEvent awsevents.KinesisEvent) (awsevents.KinesisEventResponse, error) {
	var batchItemFailures []awsevents.KinesisBatchItemFailure
	fail := func(record awsevents.KinesisEventRecord) {
		batchItemFailures = append(batchItemFailures, awsevents.KinesisBatchItemFailure{
			ItemIdentifier: record.Kinesis.SequenceNumber,
		})
	}

	for _, record := range kinesisEvent.Records {
		env, err := kinesis.ConvertFromKinesisRecord(record)
		if err != nil {
			logger.Warn("failed to convert record", zap.String("record_id", record.EventID), zap.Error(err))
			fail(record)
			continue
		}

		raw, err := json.Marshal(env)
		if err != nil {
			fail(record)
			continue
		}

		if err := notificationHandler.HandleEvent(ctx, []byte(env.AggregateID), raw); err != nil {
			logger.Error("failed to process event", zap.String("event_id", env.ID), zap.String("type", env.Type), zap.Error(err))
			fail(record)
		}
	}

	logger.Info("batch processed",
		zap.Int("records", len(kinesisEvent.Records)),
		zap.Int("failed", len(batchItemFailures)),
	)
	return awsevents.KinesisEventResponse{BatchItemFailures: batchItemFailures}, nil
}

func main() {
	lambda.Start(handler)
}
