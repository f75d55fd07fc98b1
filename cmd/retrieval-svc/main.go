// Package main 检索服务入口（retrieval-svc）
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"city-events-api/internal/application/retrieval"
	"city-events-api/internal/config"
	"city-events-api/internal/infrastructure/embedding"
	"city-events-api/internal/infrastructure/messaging"
	"city-events-api/internal/infrastructure/persistence/milvus"
	"city-events-api/internal/infrastructure/persistence/postgres"
	"city-events-api/internal/infrastructure/persistence/redis"
	"city-events-api/internal/interfaces/http/handler"
	"city-events-api/internal/interfaces/http/router"
	"city-events-api/pkg/logger"
	"city-events-api/pkg/tracer"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting retrieval-svc",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
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

	milvusRepo := milvus.NewRepository(milvusClient, cfg.Embedding.Dimension)
	engine := retrieval.NewEngine(
		embedder,
		milvus.NewRetrievalAdapter(milvusRepo),
		cfg.Retrieval.KnowledgeBaseName,
		cfg.Retrieval.NumResults,
		cfg.Retrieval.SnippetMaxRunes,
	)

	jobRepo := postgres.NewIngestionJobRepository(pgClient)
	grantRepo := postgres.NewGrantRepository(pgClient)
	resourceRepo := postgres.NewResourceRepository(pgClient)
	syncState := redis.NewSyncStateStore(redisClient)
	producer := messaging.NewProducer(redisClient.Redis(), int64(cfg.Messaging.RedisStream.MaxLen))

	handlers := router.Handlers{
		Health:     handler.NewHealthHandler(pgClient, redisClient, milvusClient),
		Lookup:     handler.NewLookupHandler(engine),
		Ingestion:  handler.NewIngestionHandler(jobRepo, syncState, producer, cfg.Ingestion.DataSourceName),
		Deployment: handler.NewDeploymentHandler(resourceRepo),
	}

	r := router.New(cfg, handlers, grantRepo, redis.NewRateLimiter(redisClient))

	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
