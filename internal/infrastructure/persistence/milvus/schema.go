// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"fmt"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionEventChunks 活动文档分片集合
	CollectionEventChunks = "event_chunks"

	// DefaultVectorDimension 默认向量维度
	DefaultVectorDimension = 1024
)

// EventChunksSchema 活动文档分片 Collection Schema
func EventChunksSchema(dimension int) *entity.Schema {
	if dimension <= 0 {
		dimension = DefaultVectorDimension
	}
	return &entity.Schema{
		CollectionName: CollectionEventChunks,
		Description:    "City event documents for semantic search",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", dimension),
				},
			},
			{
				Name:     "data_source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "city",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "event_date",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "text_content",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
		},
	}
}

// EventChunk 活动文档分片数据结构
type EventChunk struct {
	ID          string    `json:"id"`
	Vector      []float32 `json:"vector"`
	DataSource  string    `json:"data_source"`
	City        string    `json:"city"`
	EventDate   string    `json:"event_date"`
	TextContent string    `json:"text_content"`
}
