// Package main 摄取工作进程入口（ingest-worker）
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"city-events-api/internal/application/ingestion"
	"city-events-api/internal/config"
	"city-events-api/internal/infrastructure/embedding"
	"city-events-api/internal/infrastructure/messaging"
	"city-events-api/internal/infrastructure/objectstore"
	"city-events-api/internal/infrastructure/persistence/milvus"
	"city-events-api/internal/infrastructure/persistence/postgres"
	"city-events-api/internal/infrastructure/persistence/redis"
	"city-events-api/pkg/logger"
	"city-events-api/pkg/tracer"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "ingest-worker",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(ctx) }()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal(ctx, "failed to init postgres", err)
	}
	defer func() { _ = pgClient.Close() }()

	redisClient, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		logger.Fatal(ctx, "failed to init redis", err)
	}
	defer func() { _ = redisClient.Close() }()

	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Fatal(ctx, "failed to init milvus", err)
	}
	defer func() { _ = milvusClient.Close() }()

	embedder, err := embedding.NewEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to init embedder", err)
	}

	corpusStore, err := objectstore.NewGCSStore(ctx)
	if err != nil {
		logger.Fatal(ctx, "failed to init object store", err)
	}
	defer func() { _ = corpusStore.Close() }()

	milvusRepo := milvus.NewRepository(milvusClient, cfg.Embedding.Dimension)
	runner := ingestion.NewRunner(
		embedder,
		milvus.NewIngestionAdapter(milvusRepo),
		corpusStore,
		postgres.NewIngestionJobRepository(pgClient),
		postgres.NewDataSourceRepository(pgClient),
		redis.NewSyncStateStore(redisClient),
		cfg.Ingestion.BatchSize,
	).WithTransactor(postgres.NewTxManager(pgClient))

	consumer := messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamIngestion,
		Group:         messaging.ConsumerGroupIngestWorker,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  cfg.Messaging.RedisStream.BlockTimeout,
		ClaimInterval: cfg.Messaging.RedisStream.ClaimInterval,
		RetryLimit:    cfg.Messaging.RedisStream.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    cfg.Messaging.RedisStream.RetryBackoff.Initial,
			Max:        cfg.Messaging.RedisStream.RetryBackoff.Max,
			Multiplier: cfg.Messaging.RedisStream.RetryBackoff.Multiplier,
		},
	})

	consumer.RegisterHandler(messaging.MsgTypeIngestionJob, func(msgCtx context.Context, msg *messaging.Message) error {
		var payload messaging.IngestionJobMessage
		if err := msg.UnmarshalPayload(&payload); err != nil {
			return err
		}
		return runner.Run(msgCtx, payload.JobID)
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return consumer.Start(gCtx)
	})
	g.Go(func() error {
		consumer.MonitorDLQ(gCtx, 100)
		return nil
	})

	log := logger.FromContext(ctx)
	log.Info("ingest-worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("ingest-worker shutting down")
	consumer.Stop()
	cancel()
	_ = g.Wait()
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
