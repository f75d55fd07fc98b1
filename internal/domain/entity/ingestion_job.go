package entity

import "time"

// IngestionJobStatus 摄取任务状态
type IngestionJobStatus string

const (
	IngestionJobPending   IngestionJobStatus = "pending"
	IngestionJobRunning   IngestionJobStatus = "running"
	IngestionJobCompleted IngestionJobStatus = "completed"
	IngestionJobFailed    IngestionJobStatus = "failed"
)

// IngestionJob 一次数据源摄取任务
type IngestionJob struct {
	ID             string             `json:"id"`
	DataSourceName string             `json:"data_source_name"`
	Status         IngestionJobStatus `json:"status"`
	DocumentCount  int                `json:"document_count"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	DurationMs     int                `json:"duration_ms,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
	StartedAt      *time.Time         `json:"started_at,omitempty"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// NewIngestionJob 创建新的摄取任务
func NewIngestionJob(dataSourceName string) *IngestionJob {
	now := time.Now()
	return &IngestionJob{
		DataSourceName: dataSourceName,
		Status:         IngestionJobPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Start 开始执行任务
func (j *IngestionJob) Start() {
	now := time.Now()
	j.Status = IngestionJobRunning
	j.StartedAt = &now
	j.UpdatedAt = now
}

// Complete 完成任务
func (j *IngestionJob) Complete(documentCount int) {
	now := time.Now()
	j.Status = IngestionJobCompleted
	j.DocumentCount = documentCount
	j.CompletedAt = &now
	j.UpdatedAt = now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Fail 任务失败
func (j *IngestionJob) Fail(errMsg string) {
	now := time.Now()
	j.Status = IngestionJobFailed
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	j.UpdatedAt = now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Terminal 任务是否已进入终态
func (j *IngestionJob) Terminal() bool {
	return j.Status == IngestionJobCompleted || j.Status == IngestionJobFailed
}
