package entity

import "time"

// SyncState 数据源同步状态
type SyncState string

const (
	SyncStateNotStarted SyncState = "not_started"
	SyncStateInProgress SyncState = "in_progress"
	SyncStateActive     SyncState = "active"
	SyncStateFailed     SyncState = "failed"
)

// KnowledgeBase 知识库，绑定一个向量集合
type KnowledgeBase struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CollectionName string    `json:"collection_name"`
	EmbeddingModel string    `json:"embedding_model"`
	Dimension      int       `json:"dimension"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DataSource 知识库的数据源，指向对象存储中的语料文件
type DataSource struct {
	ID              string     `json:"id"`
	KnowledgeBaseID string     `json:"knowledge_base_id"`
	Name            string     `json:"name"`
	Bucket          string     `json:"bucket"`
	ObjectKey       string     `json:"object_key"`
	SyncState       SyncState  `json:"sync_state"`
	SyncError       string     `json:"sync_error,omitempty"`
	LastSyncedAt    *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// NewDataSource 创建数据源，初始为未同步状态
func NewDataSource(kbID, name, bucket, objectKey string) *DataSource {
	now := time.Now()
	return &DataSource{
		KnowledgeBaseID: kbID,
		Name:            name,
		Bucket:          bucket,
		ObjectKey:       objectKey,
		SyncState:       SyncStateNotStarted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// BeginSync 标记同步开始
func (d *DataSource) BeginSync() {
	d.SyncState = SyncStateInProgress
	d.SyncError = ""
	d.UpdatedAt = time.Now()
}

// CompleteSync 标记同步成功
func (d *DataSource) CompleteSync() {
	now := time.Now()
	d.SyncState = SyncStateActive
	d.SyncError = ""
	d.LastSyncedAt = &now
	d.UpdatedAt = now
}

// FailSync 标记同步失败
func (d *DataSource) FailSync(errMsg string) {
	d.SyncState = SyncStateFailed
	d.SyncError = errMsg
	d.UpdatedAt = time.Now()
}
