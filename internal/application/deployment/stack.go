package deployment

import (
	"context"
	"fmt"

	"city-events-api/internal/config"
	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
	"city-events-api/pkg/logger"
	"city-events-api/pkg/signer"
)

// StackBuilder 将检索栈的资源图装配出来：
// 向量集合 -> 向量索引 -> 知识库 -> 数据源 -> 访问授权 -> 检索端点。
type StackBuilder struct {
	cfg      *config.Config
	vector   VectorProvisioner
	artifact ArtifactStore
	kbs      repository.KnowledgeBaseRepository
	sources  repository.DataSourceRepository
	grants   repository.GrantRepository

	// IssuedGrant 在 Apply 成功后持有新签发的授权，密钥仅此一次可读。
	IssuedGrant *entity.AccessGrant
}

func NewStackBuilder(
	cfg *config.Config,
	vector VectorProvisioner,
	artifact ArtifactStore,
	kbs repository.KnowledgeBaseRepository,
	sources repository.DataSourceRepository,
	grants repository.GrantRepository,
) *StackBuilder {
	return &StackBuilder{
		cfg:      cfg,
		vector:   vector,
		artifact: artifact,
		kbs:      kbs,
		sources:  sources,
		grants:   grants,
	}
}

// Build 构造部署图。资源创建逻辑全部幂等，可重复 Apply。
func (b *StackBuilder) Build() *Graph {
	dep := b.cfg.Deployment
	g := NewGraph(dep.StackName)

	g.Add(&Resource{
		Type:   entity.ResourceVectorCollection,
		Name:   dep.VectorCollectionName,
		Create: b.vector.EnsureCollection,
		Delete: b.vector.DropCollection,
	})

	g.Add(&Resource{
		Type:      entity.ResourceVectorIndex,
		Name:      dep.VectorIndexName,
		DependsOn: []entity.ResourceType{entity.ResourceVectorCollection},
		Create:    b.vector.EnsureIndex,
		Delete:    b.vector.DropIndex,
	})

	g.Add(&Resource{
		Type:      entity.ResourceKnowledgeBase,
		Name:      dep.KnowledgeBaseName,
		DependsOn: []entity.ResourceType{entity.ResourceVectorIndex},
		Create:    b.createKnowledgeBase,
		Delete: func(ctx context.Context) error {
			return b.kbs.Delete(ctx, dep.KnowledgeBaseName)
		},
	})

	g.Add(&Resource{
		Type:      entity.ResourceDataSource,
		Name:      dep.DataSourceName,
		DependsOn: []entity.ResourceType{entity.ResourceKnowledgeBase},
		Create:    b.createDataSource,
		Delete: func(ctx context.Context) error {
			return b.sources.Delete(ctx, dep.DataSourceName)
		},
	})

	grantName := dep.RetrievalFunctionName + "-grant"
	g.Add(&Resource{
		Type:      entity.ResourceAccessGrant,
		Name:      grantName,
		DependsOn: []entity.ResourceType{entity.ResourceDataSource},
		Create:    b.issueGrant,
		Delete: func(ctx context.Context) error {
			return b.grants.DeleteByName(ctx, grantName)
		},
	})

	g.Add(&Resource{
		Type:      entity.ResourceEndpoint,
		Name:      dep.RetrievalFunctionName,
		DependsOn: []entity.ResourceType{entity.ResourceAccessGrant},
		Create:    b.publishEndpoint,
		Delete:    func(ctx context.Context) error { return nil },
	})

	return g
}

func (b *StackBuilder) createKnowledgeBase(ctx context.Context) error {
	name := b.cfg.Deployment.KnowledgeBaseName
	if existing, err := b.kbs.GetByName(ctx, name); err == nil && existing != nil {
		return nil
	}
	kb := &entity.KnowledgeBase{
		Name:           name,
		CollectionName: b.cfg.Deployment.VectorCollectionName,
		EmbeddingModel: b.cfg.Embedding.Model,
		Dimension:      b.cfg.Embedding.Dimension,
	}
	return b.kbs.Create(ctx, kb)
}

func (b *StackBuilder) createDataSource(ctx context.Context) error {
	name := b.cfg.Deployment.DataSourceName
	if existing, err := b.sources.GetByName(ctx, name); err == nil && existing != nil {
		return nil
	}
	kb, err := b.kbs.GetByName(ctx, b.cfg.Deployment.KnowledgeBaseName)
	if err != nil {
		return fmt.Errorf("resolve knowledge base: %w", err)
	}
	ds := entity.NewDataSource(kb.ID, name, b.cfg.Storage.GCS.CorpusBucket, b.cfg.Storage.GCS.CorpusObject)
	return b.sources.Create(ctx, ds)
}

func (b *StackBuilder) issueGrant(ctx context.Context) error {
	grantName := b.cfg.Deployment.RetrievalFunctionName + "-grant"
	if existing, err := b.grants.GetByName(ctx, grantName); err == nil && existing != nil && existing.Usable() {
		logger.Info(ctx, "access grant already exists, skipping issuance", "grant", grantName)
		return nil
	}
	apiKey, secret, err := signer.GenerateCredentials()
	if err != nil {
		return err
	}
	grant := entity.NewAccessGrant(grantName, b.cfg.Deployment.RetrievalFunctionName, apiKey, secret)
	if err := b.grants.Create(ctx, grant); err != nil {
		return err
	}
	b.IssuedGrant = grant
	logger.Info(ctx, "access grant issued", "grant", grantName, "api_key", apiKey)
	return nil
}

func (b *StackBuilder) publishEndpoint(ctx context.Context) error {
	gcs := b.cfg.Storage.GCS
	ok, err := b.artifact.Exists(ctx, gcs.ArtifactBucket, gcs.ArtifactObject)
	if err != nil {
		return fmt.Errorf("check endpoint artifact: %w", err)
	}
	if !ok {
		return fmt.Errorf("endpoint artifact %s/%s not found", gcs.ArtifactBucket, gcs.ArtifactObject)
	}
	return nil
}
