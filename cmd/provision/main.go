// Package main 部署栈管理入口（provision）
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"city-events-api/internal/application/deployment"
	"city-events-api/internal/config"
	"city-events-api/internal/domain/entity"
	"city-events-api/internal/infrastructure/objectstore"
	"city-events-api/internal/infrastructure/persistence/milvus"
	"city-events-api/internal/infrastructure/persistence/postgres"
)

func main() {
	destroy := flag.Bool("destroy", false, "destroy the deployment stack instead of applying it")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	pgClient, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		log.Fatalf("failed to init postgres: %v", err)
	}
	defer func() { _ = pgClient.Close() }()

	// 建表
	if err := pgClient.AutoMigrate(
		&entity.KnowledgeBase{},
		&entity.DataSource{},
		&entity.AccessGrant{},
		&entity.DeploymentResource{},
		&entity.IngestionJob{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		log.Fatalf("failed to init milvus: %v", err)
	}
	defer func() { _ = milvusClient.Close() }()

	artifactStore, err := objectstore.NewGCSStore(ctx)
	if err != nil {
		log.Fatalf("failed to init object store: %v", err)
	}
	defer func() { _ = artifactStore.Close() }()

	milvusRepo := milvus.NewRepository(milvusClient, cfg.Embedding.Dimension)
	builder := deployment.NewStackBuilder(
		cfg,
		milvus.NewProvisioner(milvusRepo),
		artifactStore,
		postgres.NewKnowledgeBaseRepository(pgClient),
		postgres.NewDataSourceRepository(pgClient),
		postgres.NewGrantRepository(pgClient),
	)

	graph := builder.Build()
	executor := deployment.NewExecutor(postgres.NewResourceRepository(pgClient))

	if *destroy {
		fmt.Printf("Destroying stack %s...\n", cfg.Deployment.StackName)
		if err := executor.Destroy(ctx, graph); err != nil {
			log.Fatalf("destroy failed: %v", err)
		}
		fmt.Println("Stack destroyed.")
		return
	}

	fmt.Printf("Applying stack %s...\n", cfg.Deployment.StackName)
	if err := executor.Apply(ctx, graph); err != nil {
		log.Fatalf("apply failed: %v", err)
	}

	fmt.Println("Stack applied successfully.")

	// 新签发的调用凭证只在此处输出一次，密钥不落日志
	if grant := builder.IssuedGrant; grant != nil {
		fmt.Println("New access grant issued:")
		fmt.Printf("  api_key: %s\n", grant.APIKey)
		fmt.Printf("  secret:  %s\n", grant.Secret)
		fmt.Println("Store the secret now; it cannot be recovered later.")
	} else {
		fmt.Fprintln(os.Stderr, "Access grant already existed; no new credentials issued.")
	}
}
