package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
)

// ResourceRepository 部署资源登记表实现
type ResourceRepository struct {
	client *Client
}

// NewResourceRepository 创建部署资源仓储
func NewResourceRepository(client *Client) *ResourceRepository {
	return &ResourceRepository{client: client}
}

var _ repository.ResourceRepository = (*ResourceRepository)(nil)

// Save 保存资源状态（同栈同类型的记录覆盖更新）
func (r *ResourceRepository) Save(ctx context.Context, res *entity.DeploymentResource) error {
	ctx, span := tracer.Start(ctx, "postgres.ResourceRepository.Save")
	defer span.End()

	db := getDB(ctx, r.client.db)

	var existing entity.DeploymentResource
	err := db.First(&existing, "stack_name = ? AND resource_type = ?", res.StackName, res.ResourceType).Error
	if err == nil {
		res.ID = existing.ID
		res.CreatedAt = existing.CreatedAt
		if err := db.Save(res).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to update deployment resource: %w", err)
		}
		return nil
	}

	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	if err := db.Create(res).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create deployment resource: %w", err)
	}
	return nil
}

// ListByStack 获取栈内全部资源
func (r *ResourceRepository) ListByStack(ctx context.Context, stackName string) ([]*entity.DeploymentResource, error) {
	ctx, span := tracer.Start(ctx, "postgres.ResourceRepository.ListByStack")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var resources []*entity.DeploymentResource
	if err := db.Where("stack_name = ?", stackName).
		Order("created_at ASC").
		Find(&resources).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list deployment resources: %w", err)
	}
	return resources, nil
}

// DeleteByStack 删除栈内全部资源记录
func (r *ResourceRepository) DeleteByStack(ctx context.Context, stackName string) error {
	ctx, span := tracer.Start(ctx, "postgres.ResourceRepository.DeleteByStack")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.DeploymentResource{}, "stack_name = ?", stackName).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete deployment resources: %w", err)
	}
	return nil
}
