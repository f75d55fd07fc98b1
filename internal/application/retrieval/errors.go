package retrieval

import "errors"

var (
	// ErrMissingTopic 表示 city 和 question 均为空，无法构造检索主题。
	ErrMissingTopic = errors.New("either city or question is required")

	// ErrVectorDisabled 表示向量检索能力未配置（Milvus 或 Embedder 不可用）。
	ErrVectorDisabled = errors.New("vector retrieval is disabled")
)
