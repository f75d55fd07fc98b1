package retrieval

import "context"

// VectorSearcher 定义应用层对“向量检索”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorSearcher interface {
	SearchChunks(ctx context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error)
}

type VectorSearchParams struct {
	QueryVector []float32
	TopK        int
}

type VectorSearchResult struct {
	ID          string
	Score       float32
	TextContent string
	City        string
	EventDate   string
}
