// Package redis 提供 Redis 缓存和消息队列实现
package redis

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
)

// SyncStateStore 数据源同步状态存储实现。
// 摄取工作进程写入，接口层读取，状态同时落在 PostgreSQL，Redis 仅作快速路径。
type SyncStateStore struct {
	client *Client
}

// NewSyncStateStore 创建同步状态存储
func NewSyncStateStore(client *Client) *SyncStateStore {
	return &SyncStateStore{client: client}
}

var _ repository.SyncStateStore = (*SyncStateStore)(nil)

func syncStateKey(dataSourceName string) string {
	return "syncstate:" + dataSourceName
}

// SetSyncState 写入数据源同步状态
func (s *SyncStateStore) SetSyncState(ctx context.Context, dataSourceName string, state entity.SyncState) error {
	ctx, span := tracer.Start(ctx, "redis.SetSyncState",
		trace.WithAttributes(
			attribute.String("data_source", dataSourceName),
			attribute.String("state", string(state)),
		))
	defer span.End()

	if err := s.client.rdb.Set(ctx, syncStateKey(dataSourceName), string(state), 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set sync state: %w", err)
	}
	return nil
}

// GetSyncState 读取数据源同步状态，键不存在时返回 not_started
func (s *SyncStateStore) GetSyncState(ctx context.Context, dataSourceName string) (entity.SyncState, error) {
	ctx, span := tracer.Start(ctx, "redis.GetSyncState",
		trace.WithAttributes(attribute.String("data_source", dataSourceName)))
	defer span.End()

	val, err := s.client.rdb.Get(ctx, syncStateKey(dataSourceName)).Result()
	if err != nil {
		if IsNil(err) {
			return entity.SyncStateNotStarted, nil
		}
		span.RecordError(err)
		return "", fmt.Errorf("failed to get sync state: %w", err)
	}
	return entity.SyncState(val), nil
}
