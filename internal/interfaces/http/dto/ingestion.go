// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"city-events-api/internal/domain/entity"
)

// CreateIngestionJobRequest 创建摄取任务请求
// data_source 为空时使用配置的默认数据源
type CreateIngestionJobRequest struct {
	DataSource string `json:"data_source" binding:"max=128"`
}

// IngestionJobResponse 摄取任务响应
type IngestionJobResponse struct {
	ID            string `json:"id"`
	DataSource    string `json:"data_source"`
	Status        string `json:"status"`
	DocumentCount int    `json:"document_count"`
	ErrorMessage  string `json:"error_message,omitempty"`
	DurationMs    int    `json:"duration_ms,omitempty"`
	CreatedAt     string `json:"created_at"`
	StartedAt     string `json:"started_at,omitempty"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// IngestionJobListResponse 摄取任务列表响应
type IngestionJobListResponse struct {
	Jobs []*IngestionJobResponse `json:"jobs"`
}

// SyncStateResponse 数据源同步状态响应
type SyncStateResponse struct {
	DataSource string `json:"data_source"`
	SyncState  string `json:"sync_state"`
}

// ToIngestionJobResponse 转换摄取任务实体
func ToIngestionJobResponse(job *entity.IngestionJob) *IngestionJobResponse {
	resp := &IngestionJobResponse{
		ID:            job.ID,
		DataSource:    job.DataSourceName,
		Status:        string(job.Status),
		DocumentCount: job.DocumentCount,
		ErrorMessage:  job.ErrorMessage,
		DurationMs:    job.DurationMs,
		CreatedAt:     job.CreatedAt.Format(time.RFC3339),
	}
	if job.StartedAt != nil {
		resp.StartedAt = job.StartedAt.Format(time.RFC3339)
	}
	if job.CompletedAt != nil {
		resp.CompletedAt = job.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
