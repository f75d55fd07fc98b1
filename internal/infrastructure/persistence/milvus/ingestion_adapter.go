package milvus

import (
	"context"

	"city-events-api/internal/application/ingestion"
)

// IngestionAdapter 把仓储适配为摄取流程的 VectorIndexer port。
type IngestionAdapter struct {
	repo *Repository
}

func NewIngestionAdapter(repo *Repository) *IngestionAdapter {
	return &IngestionAdapter{repo: repo}
}

var _ ingestion.VectorIndexer = (*IngestionAdapter)(nil)

func (a *IngestionAdapter) EnsureEventChunksCollection(ctx context.Context) error {
	if a == nil || a.repo == nil {
		return ingestion.ErrVectorDisabled
	}
	return a.repo.EnsureEventChunksCollection(ctx)
}

func (a *IngestionAdapter) DeleteChunksByDataSource(ctx context.Context, dataSourceName string) error {
	if a == nil || a.repo == nil {
		return ingestion.ErrVectorDisabled
	}
	return a.repo.DeleteChunksByDataSource(ctx, dataSourceName)
}

func (a *IngestionAdapter) InsertChunks(ctx context.Context, chunks []*ingestion.EventChunk) error {
	if a == nil || a.repo == nil {
		return ingestion.ErrVectorDisabled
	}
	if len(chunks) == 0 {
		return nil
	}

	out := make([]*EventChunk, 0, len(chunks))
	for i := range chunks {
		c := chunks[i]
		if c == nil {
			continue
		}
		out = append(out, &EventChunk{
			ID:          c.ID,
			Vector:      c.Vector,
			DataSource:  c.DataSource,
			City:        c.City,
			EventDate:   c.EventDate,
			TextContent: c.TextContent,
		})
	}
	return a.repo.InsertChunks(ctx, out)
}
