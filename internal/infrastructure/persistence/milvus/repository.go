// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"city-events-api/pkg/metrics"
)

// Repository 向量检索仓储
type Repository struct {
	client    *Client
	dimension int
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client, dimension int) *Repository {
	if dimension <= 0 {
		dimension = DefaultVectorDimension
	}
	return &Repository{client: client, dimension: dimension}
}

// SearchParams 检索参数
type SearchParams struct {
	QueryVector []float32
	TopK        int
}

// SearchResult 检索结果
type SearchResult struct {
	ID          string
	Score       float32
	TextContent string
	City        string
	EventDate   string
}

// CreateCollection 创建集合，已存在视为成功
func (r *Repository) CreateCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", CollectionEventChunks)))
	defer span.End()

	exists, err := r.client.HasCollection(ctx, CollectionEventChunks)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return nil
	}

	schema := EventChunksSchema(r.dimension)
	schema.CollectionName = r.client.CollectionName(schema.CollectionName)

	if err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// CreateIndex 创建 HNSW 索引，已存在视为成功
func (r *Repository) CreateIndex(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", CollectionEventChunks)))
	defer span.End()

	collName := r.client.CollectionName(CollectionEventChunks)

	if indexes, err := r.client.milvus.DescribeIndex(ctx, collName, "vector"); err == nil && len(indexes) > 0 {
		return nil
	}

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build index params: %w", err)
	}

	if err := r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// DropIndex 删除索引
func (r *Repository) DropIndex(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DropIndex",
		trace.WithAttributes(attribute.String("collection", CollectionEventChunks)))
	defer span.End()

	collName := r.client.CollectionName(CollectionEventChunks)
	if err := r.client.milvus.ReleaseCollection(ctx, collName); err != nil {
		span.RecordError(err)
	}
	return r.client.milvus.DropIndex(ctx, collName, "vector")
}

// DropCollection 删除集合
func (r *Repository) DropCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DropCollection",
		trace.WithAttributes(attribute.String("collection", CollectionEventChunks)))
	defer span.End()

	exists, err := r.client.HasCollection(ctx, CollectionEventChunks)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return nil
	}
	return r.client.milvus.DropCollection(ctx, r.client.CollectionName(CollectionEventChunks))
}

// SearchChunks 检索活动文档分片
func (r *Repository) SearchChunks(ctx context.Context, params *SearchParams) ([]*SearchResult, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.SearchChunks",
		trace.WithAttributes(attribute.Int("top_k", params.TopK)))
	defer span.End()

	collName := r.client.CollectionName(CollectionEventChunks)
	start := time.Now()

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{"id", "text_content", "city", "event_date"},
		[]entity.Vector{entity.FloatVector(params.QueryVector)},
		"vector",
		entity.COSINE,
		params.TopK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionEventChunks).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MilvusSearchTotal.WithLabelValues(CollectionEventChunks, "error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionEventChunks, "success").Inc()

	var searchResults []*SearchResult
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			sr := &SearchResult{
				Score: result.Scores[i],
			}
			if idCol, ok := result.Fields.GetColumn("id").(*entity.ColumnVarChar); ok {
				sr.ID = idCol.Data()[i]
			}
			if textCol, ok := result.Fields.GetColumn("text_content").(*entity.ColumnVarChar); ok {
				sr.TextContent = textCol.Data()[i]
			}
			if cityCol, ok := result.Fields.GetColumn("city").(*entity.ColumnVarChar); ok {
				sr.City = cityCol.Data()[i]
			}
			if dateCol, ok := result.Fields.GetColumn("event_date").(*entity.ColumnVarChar); ok {
				sr.EventDate = dateCol.Data()[i]
			}
			searchResults = append(searchResults, sr)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(searchResults)))
	return searchResults, nil
}

// InsertChunks 插入活动文档分片
func (r *Repository) InsertChunks(ctx context.Context, chunks []*EventChunk) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertChunks",
		trace.WithAttributes(attribute.Int("count", len(chunks))))
	defer span.End()

	if len(chunks) == 0 {
		return nil
	}

	collName := r.client.CollectionName(CollectionEventChunks)

	ids := make([]string, len(chunks))
	vectors := make([][]float32, len(chunks))
	dataSources := make([]string, len(chunks))
	cities := make([]string, len(chunks))
	eventDates := make([]string, len(chunks))
	textContents := make([]string, len(chunks))

	for i, chunk := range chunks {
		ids[i] = chunk.ID
		vectors[i] = chunk.Vector
		dataSources[i] = chunk.DataSource
		cities[i] = chunk.City
		eventDates[i] = chunk.EventDate
		textContents[i] = chunk.TextContent
	}

	idCol := entity.NewColumnVarChar("id", ids)
	vectorCol := entity.NewColumnFloatVector("vector", r.dimension, vectors)
	sourceCol := entity.NewColumnVarChar("data_source", dataSources)
	cityCol := entity.NewColumnVarChar("city", cities)
	dateCol := entity.NewColumnVarChar("event_date", eventDates)
	textCol := entity.NewColumnVarChar("text_content", textContents)

	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, sourceCol, cityCol, dateCol, textCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert chunks: %w", err)
	}
	return nil
}

// DeleteChunksByDataSource 删除数据源的全部分片
func (r *Repository) DeleteChunksByDataSource(ctx context.Context, dataSourceName string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	dataSourceName = strings.TrimSpace(dataSourceName)
	if dataSourceName == "" {
		return nil
	}

	ctx, span := tracer.Start(ctx, "milvus.DeleteChunksByDataSource",
		trace.WithAttributes(attribute.String("data_source", dataSourceName)))
	defer span.End()

	collName := r.client.CollectionName(CollectionEventChunks)
	filter := fmt.Sprintf(`data_source == "%s"`, dataSourceName)

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

// EnsureEventChunksCollection 确保 event_chunks 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureEventChunksCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionEventChunks)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx)
	}

	// 尝试确保集合已加载（若已加载，Milvus 会返回成功）
	return r.client.LoadCollection(ctx, CollectionEventChunks)
}
