package deployment

import "context"

// VectorProvisioner 向量集合与索引的创建与回滚（port）。
// 实现必须幂等：目标已存在视为成功。
type VectorProvisioner interface {
	EnsureCollection(ctx context.Context) error
	EnsureIndex(ctx context.Context) error
	DropIndex(ctx context.Context) error
	DropCollection(ctx context.Context) error
}

// ArtifactStore 端点部署包的存在性校验（port）。
type ArtifactStore interface {
	Exists(ctx context.Context, bucket, objectKey string) (bool, error)
}
