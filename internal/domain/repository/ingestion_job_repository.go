package repository

import (
	"context"

	"city-events-api/internal/domain/entity"
)

// IngestionJobRepository 摄取任务仓储接口
type IngestionJobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.IngestionJob) error

	// GetByID 根据 ID 获取任务
	GetByID(ctx context.Context, id string) (*entity.IngestionJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.IngestionJob) error

	// ListByDataSource 获取数据源的任务列表，按创建时间倒序
	ListByDataSource(ctx context.Context, dataSourceName string, limit int) ([]*entity.IngestionJob, error)
}
