package ingestion

import "errors"

var (
	// ErrVectorDisabled 表示向量索引能力未配置（Milvus 或 Embedder 不可用）。
	ErrVectorDisabled = errors.New("vector indexing is disabled")

	// ErrEmptyCorpus 表示语料文件存在但不含任何有效记录。
	ErrEmptyCorpus = errors.New("corpus contains no valid events")
)
