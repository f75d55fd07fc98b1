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

// IngestionJobRepository 摄取任务仓储实现
type IngestionJobRepository struct {
	client *Client
}

// NewIngestionJobRepository 创建摄取任务仓储
func NewIngestionJobRepository(client *Client) *IngestionJobRepository {
	return &IngestionJobRepository{client: client}
}

var _ repository.IngestionJobRepository = (*IngestionJobRepository)(nil)

// Create 创建任务
func (r *IngestionJobRepository) Create(ctx context.Context, job *entity.IngestionJob) error {
	ctx, span := tracer.Start(ctx, "postgres.IngestionJobRepository.Create")
	defer span.End()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	db := getDB(ctx, r.client.db)
	if err := db.Create(job).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create ingestion job: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取任务
func (r *IngestionJobRepository) GetByID(ctx context.Context, id string) (*entity.IngestionJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.IngestionJobRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var job entity.IngestionJob
	if err := db.First(&job, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrJobNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get ingestion job: %w", err)
	}
	return &job, nil
}

// Update 更新任务
func (r *IngestionJobRepository) Update(ctx context.Context, job *entity.IngestionJob) error {
	ctx, span := tracer.Start(ctx, "postgres.IngestionJobRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(job).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update ingestion job: %w", err)
	}
	return nil
}

// ListByDataSource 获取数据源的任务列表
func (r *IngestionJobRepository) ListByDataSource(ctx context.Context, dataSourceName string, limit int) ([]*entity.IngestionJob, error) {
	ctx, span := tracer.Start(ctx, "postgres.IngestionJobRepository.ListByDataSource")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	db := getDB(ctx, r.client.db)
	var jobs []*entity.IngestionJob
	if err := db.Where("data_source_name = ?", dataSourceName).
		Order("created_at DESC").
		Limit(limit).
		Find(&jobs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list ingestion jobs: %w", err)
	}
	return jobs, nil
}
