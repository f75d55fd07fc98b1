package repository

import (
	"context"

	"city-events-api/internal/domain/entity"
)

// SyncStateStore 数据源同步状态的快速读写存储
// 摄取工作进程写入，检索服务与状态查询接口读取
type SyncStateStore interface {
	// SetSyncState 写入数据源同步状态
	SetSyncState(ctx context.Context, dataSourceName string, state entity.SyncState) error

	// GetSyncState 读取数据源同步状态，不存在时返回 SyncStateNotStarted
	GetSyncState(ctx context.Context, dataSourceName string) (entity.SyncState, error)
}

// CorpusStore 语料库对象存储接口
type CorpusStore interface {
	// LoadCorpus 读取并解析语料文件
	LoadCorpus(ctx context.Context, bucket, objectKey string) ([]*entity.CorpusEvent, error)

	// Exists 检查对象是否存在
	Exists(ctx context.Context, bucket, objectKey string) (bool, error)
}
