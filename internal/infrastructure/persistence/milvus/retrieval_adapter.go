package milvus

import (
	"context"

	"city-events-api/internal/application/retrieval"
)

// RetrievalAdapter 把仓储适配为检索引擎的 VectorSearcher port。
type RetrievalAdapter struct {
	repo *Repository
}

func NewRetrievalAdapter(repo *Repository) *RetrievalAdapter {
	return &RetrievalAdapter{repo: repo}
}

var _ retrieval.VectorSearcher = (*RetrievalAdapter)(nil)

func (a *RetrievalAdapter) SearchChunks(ctx context.Context, params *retrieval.VectorSearchParams) ([]*retrieval.VectorSearchResult, error) {
	if a == nil || a.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}
	if params == nil {
		return nil, nil
	}

	out, err := a.repo.SearchChunks(ctx, &SearchParams{
		QueryVector: params.QueryVector,
		TopK:        params.TopK,
	})
	if err != nil {
		return nil, err
	}

	results := make([]*retrieval.VectorSearchResult, 0, len(out))
	for i := range out {
		v := out[i]
		if v == nil {
			continue
		}
		results = append(results, &retrieval.VectorSearchResult{
			ID:          v.ID,
			Score:       v.Score,
			TextContent: v.TextContent,
			City:        v.City,
			EventDate:   v.EventDate,
		})
	}
	return results, nil
}
