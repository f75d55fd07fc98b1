package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	einoembedding "github.com/cloudwego/eino/components/embedding"

	"city-events-api/internal/application/retrieval"
	"city-events-api/internal/interfaces/http/dto"
)

type stubEmbedder struct{}

func (s *stubEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...einoembedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

type stubSearcher struct {
	results []*retrieval.VectorSearchResult
	err     error
}

func (s *stubSearcher) SearchChunks(_ context.Context, _ *retrieval.VectorSearchParams) ([]*retrieval.VectorSearchResult, error) {
	return s.results, s.err
}

func newLookupRouter(searcher retrieval.VectorSearcher) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := retrieval.NewEngine(&stubEmbedder{}, searcher, "city-events-kb", 5, 200)
	h := NewLookupHandler(engine)

	r := gin.New()
	r.POST("/v1/events/lookup", h.Lookup)
	return r
}

func doLookup(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/lookup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLookupReturnsJoinedEvents(t *testing.T) {
	r := newLookupRouter(&stubSearcher{
		results: []*retrieval.VectorSearchResult{
			{ID: "a", Score: 0.9, TextContent: "Boat Show in Miami on 2026-02-12: annual show"},
			{ID: "b", Score: 0.7, TextContent: "Food Fest in Miami on 2026-03-01: street food"},
		},
	})

	w := doLookup(t, r, `{"city":"Miami"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp dto.Response[dto.LookupResponse]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.HitCount != 2 {
		t.Errorf("hit_count = %d, want 2", resp.Data.HitCount)
	}
	want := "Boat Show in Miami on 2026-02-12: annual show\nFood Fest in Miami on 2026-03-01: street food"
	if resp.Data.Events != want {
		t.Errorf("events = %q, want %q", resp.Data.Events, want)
	}
}

func TestLookupMissingTopicReturns400(t *testing.T) {
	r := newLookupRouter(&stubSearcher{})

	w := doLookup(t, r, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error == nil || resp.Error.ErrorCode != "1001" {
		t.Errorf("error_code = %+v, want 1001", resp.Error)
	}
}

func TestLookupIgnoresExtraFields(t *testing.T) {
	r := newLookupRouter(&stubSearcher{
		results: []*retrieval.VectorSearchResult{
			{ID: "a", Score: 0.9, TextContent: "Boat Show in Miami on 2026-02-12: annual show"},
		},
	})

	w := doLookup(t, r, `{"city":"Miami","unknown_field":42}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestLookupZeroHitsReturnsEmptyEvents(t *testing.T) {
	r := newLookupRouter(&stubSearcher{})

	w := doLookup(t, r, `{"question":"concerts next weekend"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp dto.Response[dto.LookupResponse]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Events != "" || resp.Data.HitCount != 0 {
		t.Errorf("got events=%q hit_count=%d, want empty", resp.Data.Events, resp.Data.HitCount)
	}
}

func TestLookupBackendFailureReturns502(t *testing.T) {
	r := newLookupRouter(&stubSearcher{err: context.DeadlineExceeded})

	w := doLookup(t, r, `{"city":"Miami"}`)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}
