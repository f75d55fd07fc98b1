// Package ingestion 实现语料摄取：加载语料 -> 向量化 -> 写入向量库
package ingestion

import "context"

// VectorIndexer 定义摄取流程对向量存储的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorIndexer interface {
	EnsureEventChunksCollection(ctx context.Context) error
	DeleteChunksByDataSource(ctx context.Context, dataSourceName string) error
	InsertChunks(ctx context.Context, chunks []*EventChunk) error
}

// EventChunk 写入向量库的一条文档分片。
// ID 由语料记录确定性派生，重复摄取覆盖而非追加。
type EventChunk struct {
	ID          string
	DataSource  string
	City        string
	EventDate   string
	TextContent string
	Vector      []float32
}
