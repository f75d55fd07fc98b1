// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
	apperrors "city-events-api/pkg/errors"
)

// KnowledgeBaseRepository 知识库仓储实现
type KnowledgeBaseRepository struct {
	client *Client
}

// NewKnowledgeBaseRepository 创建知识库仓储
func NewKnowledgeBaseRepository(client *Client) *KnowledgeBaseRepository {
	return &KnowledgeBaseRepository{client: client}
}

var _ repository.KnowledgeBaseRepository = (*KnowledgeBaseRepository)(nil)

// Create 创建知识库
func (r *KnowledgeBaseRepository) Create(ctx context.Context, kb *entity.KnowledgeBase) error {
	ctx, span := tracer.Start(ctx, "postgres.KnowledgeBaseRepository.Create")
	defer span.End()

	if kb.ID == "" {
		kb.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	if err := db.Create(kb).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create knowledge base: %w", err)
	}
	return nil
}

// GetByName 根据名称获取知识库
func (r *KnowledgeBaseRepository) GetByName(ctx context.Context, name string) (*entity.KnowledgeBase, error) {
	ctx, span := tracer.Start(ctx, "postgres.KnowledgeBaseRepository.GetByName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var kb entity.KnowledgeBase
	if err := db.First(&kb, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrKnowledgeBaseNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get knowledge base: %w", err)
	}
	return &kb, nil
}

// Delete 删除知识库
func (r *KnowledgeBaseRepository) Delete(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "postgres.KnowledgeBaseRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.KnowledgeBase{}, "name = ?", name).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete knowledge base: %w", err)
	}
	return nil
}

// DataSourceRepository 数据源仓储实现
type DataSourceRepository struct {
	client *Client
}

// NewDataSourceRepository 创建数据源仓储
func NewDataSourceRepository(client *Client) *DataSourceRepository {
	return &DataSourceRepository{client: client}
}

var _ repository.DataSourceRepository = (*DataSourceRepository)(nil)

// Create 创建数据源
func (r *DataSourceRepository) Create(ctx context.Context, ds *entity.DataSource) error {
	ctx, span := tracer.Start(ctx, "postgres.DataSourceRepository.Create")
	defer span.End()

	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	if err := db.Create(ds).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create data source: %w", err)
	}
	return nil
}

// GetByName 根据名称获取数据源
func (r *DataSourceRepository) GetByName(ctx context.Context, name string) (*entity.DataSource, error) {
	ctx, span := tracer.Start(ctx, "postgres.DataSourceRepository.GetByName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var ds entity.DataSource
	if err := db.First(&ds, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrDataSourceNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get data source: %w", err)
	}
	return &ds, nil
}

// Update 更新数据源
func (r *DataSourceRepository) Update(ctx context.Context, ds *entity.DataSource) error {
	ctx, span := tracer.Start(ctx, "postgres.DataSourceRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(ds).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update data source: %w", err)
	}
	return nil
}

// Delete 删除数据源
func (r *DataSourceRepository) Delete(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "postgres.DataSourceRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.DataSource{}, "name = ?", name).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete data source: %w", err)
	}
	return nil
}

// GrantRepository 访问授权仓储实现
type GrantRepository struct {
	client *Client
}

// NewGrantRepository 创建访问授权仓储
func NewGrantRepository(client *Client) *GrantRepository {
	return &GrantRepository{client: client}
}

var _ repository.GrantRepository = (*GrantRepository)(nil)

// Create 创建授权
func (r *GrantRepository) Create(ctx context.Context, grant *entity.AccessGrant) error {
	ctx, span := tracer.Start(ctx, "postgres.GrantRepository.Create")
	defer span.End()

	if grant.ID == "" {
		grant.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	if err := db.Create(grant).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create access grant: %w", err)
	}
	return nil
}

// GetByAPIKey 根据 API Key 获取授权
func (r *GrantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*entity.AccessGrant, error) {
	ctx, span := tracer.Start(ctx, "postgres.GrantRepository.GetByAPIKey")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var grant entity.AccessGrant
	if err := db.First(&grant, "api_key = ?", apiKey).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeKeyNotGranted, "api key not granted")
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get access grant: %w", err)
	}
	return &grant, nil
}

// GetByName 根据授权名获取授权
func (r *GrantRepository) GetByName(ctx context.Context, name string) (*entity.AccessGrant, error) {
	ctx, span := tracer.Start(ctx, "postgres.GrantRepository.GetByName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var grant entity.AccessGrant
	if err := db.First(&grant, "name = ?", name).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.New(apperrors.CodeKeyNotGranted, "access grant not found")
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get access grant: %w", err)
	}
	return &grant, nil
}

// Revoke 吊销授权
func (r *GrantRepository) Revoke(ctx context.Context, apiKey string) error {
	ctx, span := tracer.Start(ctx, "postgres.GrantRepository.Revoke")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.AccessGrant{}).
		Where("api_key = ?", apiKey).
		Updates(map[string]any{"revoked": true, "revoked_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to revoke access grant: %w", result.Error)
	}
	return nil
}

// DeleteByName 按授权名删除
func (r *GrantRepository) DeleteByName(ctx context.Context, name string) error {
	ctx, span := tracer.Start(ctx, "postgres.GrantRepository.DeleteByName")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Delete(&entity.AccessGrant{}, "name = ?", name).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete access grant: %w", err)
	}
	return nil
}
