// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"city-events-api/internal/domain/entity"
)

// KnowledgeBaseRepository 知识库仓储接口
type KnowledgeBaseRepository interface {
	// Create 创建知识库
	Create(ctx context.Context, kb *entity.KnowledgeBase) error

	// GetByName 根据名称获取知识库
	GetByName(ctx context.Context, name string) (*entity.KnowledgeBase, error)

	// Delete 删除知识库
	Delete(ctx context.Context, name string) error
}

// DataSourceRepository 数据源仓储接口
type DataSourceRepository interface {
	// Create 创建数据源
	Create(ctx context.Context, ds *entity.DataSource) error

	// GetByName 根据名称获取数据源
	GetByName(ctx context.Context, name string) (*entity.DataSource, error)

	// Update 更新数据源
	Update(ctx context.Context, ds *entity.DataSource) error

	// Delete 删除数据源
	Delete(ctx context.Context, name string) error
}

// GrantRepository 访问授权仓储接口
type GrantRepository interface {
	// Create 创建授权
	Create(ctx context.Context, grant *entity.AccessGrant) error

	// GetByAPIKey 根据 API Key 获取授权
	GetByAPIKey(ctx context.Context, apiKey string) (*entity.AccessGrant, error)

	// GetByName 根据授权名获取授权
	GetByName(ctx context.Context, name string) (*entity.AccessGrant, error)

	// Revoke 吊销授权
	Revoke(ctx context.Context, apiKey string) error

	// DeleteByName 按授权名删除（栈回滚时使用）
	DeleteByName(ctx context.Context, name string) error
}

// ResourceRepository 部署资源仓储接口
type ResourceRepository interface {
	// Save 保存资源状态（创建或更新）
	Save(ctx context.Context, res *entity.DeploymentResource) error

	// ListByStack 获取栈内全部资源，按创建顺序排列
	ListByStack(ctx context.Context, stackName string) ([]*entity.DeploymentResource, error)

	// DeleteByStack 删除栈内全部资源记录
	DeleteByStack(ctx context.Context, stackName string) error
}
