package retrieval

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"

	apperrors "city-events-api/pkg/errors"
)

type fakeEmbedder struct {
	inputs []string
	err    error
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, texts...)
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

type fakeSearcher struct {
	calls   int
	results []*VectorSearchResult
	err     error
	lastK   int
}

func (f *fakeSearcher) SearchChunks(_ context.Context, params *VectorSearchParams) ([]*VectorSearchResult, error) {
	f.calls++
	f.lastK = params.TopK
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func TestTopic(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		want    string
		wantErr bool
	}{
		{"question only", Query{Question: "what is happening downtown"}, "what is happening downtown", false},
		{"city only", Query{City: "Miami"}, "events in Miami", false},
		{"question wins over city", Query{City: "Miami", Question: "jazz concerts"}, "jazz concerts", false},
		{"whitespace question falls back to city", Query{City: "Austin", Question: "   "}, "events in Austin", false},
		{"both empty", Query{}, "", true},
		{"both whitespace", Query{City: " ", Question: "\t"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Topic(tt.query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Topic(%+v) expected error, got %q", tt.query, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Topic(%+v) unexpected error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("Topic(%+v) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestLookupCallsBackendOnce(t *testing.T) {
	searcher := &fakeSearcher{results: []*VectorSearchResult{
		{ID: "1", TextContent: "Art Festival in Miami on 2026-03-01: open air galleries"},
	}}
	engine := NewEngine(&fakeEmbedder{}, searcher, "city-events-kb", 5, 200)

	out, err := engine.Lookup(context.Background(), Query{City: "Miami"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if searcher.calls != 1 {
		t.Errorf("backend called %d times, want exactly 1", searcher.calls)
	}
	if searcher.lastK != 5 {
		t.Errorf("TopK = %d, want 5", searcher.lastK)
	}
	if out.HitCount != 1 {
		t.Errorf("HitCount = %d, want 1", out.HitCount)
	}
}

func TestLookupMissingTopicSkipsBackend(t *testing.T) {
	searcher := &fakeSearcher{}
	embedder := &fakeEmbedder{}
	engine := NewEngine(embedder, searcher, "city-events-kb", 5, 200)

	_, err := engine.Lookup(context.Background(), Query{})
	if err == nil {
		t.Fatal("expected error for empty query")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeInvalidParam {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeInvalidParam)
	}
	if searcher.calls != 0 {
		t.Errorf("backend called %d times, want 0", searcher.calls)
	}
	if len(embedder.inputs) != 0 {
		t.Errorf("embedder called with %v, want no calls", embedder.inputs)
	}
}

func TestLookupTopicFromCity(t *testing.T) {
	embedder := &fakeEmbedder{}
	searcher := &fakeSearcher{results: []*VectorSearchResult{
		{ID: "1", TextContent: "Food & Wine Festival in Miami on 2026-02-20: beachside tastings"},
		{ID: "2", TextContent: "Boat Show in Miami on 2026-02-12: marina exhibits"},
	}}
	engine := NewEngine(embedder, searcher, "city-events-kb", 5, 200)

	out, err := engine.Lookup(context.Background(), Query{City: "Miami"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(embedder.inputs) != 1 || embedder.inputs[0] != "events in Miami" {
		t.Errorf("embedded topic = %v, want [events in Miami]", embedder.inputs)
	}
	want := "Food & Wine Festival in Miami on 2026-02-20: beachside tastings\nBoat Show in Miami on 2026-02-12: marina exhibits"
	if out.Events != want {
		t.Errorf("Events = %q, want %q", out.Events, want)
	}
	if out.HitCount != 2 {
		t.Errorf("HitCount = %d, want 2", out.HitCount)
	}
}

func TestLookupZeroHits(t *testing.T) {
	engine := NewEngine(&fakeEmbedder{}, &fakeSearcher{}, "city-events-kb", 5, 200)

	out, err := engine.Lookup(context.Background(), Query{Question: "underwater basket weaving"})
	if err != nil {
		t.Fatalf("zero hits should not be an error: %v", err)
	}
	if out.Events != "" {
		t.Errorf("Events = %q, want empty", out.Events)
	}
	if out.HitCount != 0 {
		t.Errorf("HitCount = %d, want 0", out.HitCount)
	}
}

func TestLookupTruncatesLongSnippets(t *testing.T) {
	long := strings.Repeat("很长的活动描述", 50) // 350 runes
	searcher := &fakeSearcher{results: []*VectorSearchResult{{ID: "1", TextContent: long}}}
	engine := NewEngine(&fakeEmbedder{}, searcher, "city-events-kb", 5, 200)

	out, err := engine.Lookup(context.Background(), Query{City: "Shanghai"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	runes := []rune(out.Events)
	if len(runes) != 201 {
		t.Errorf("snippet length = %d runes, want 200 + ellipsis", len(runes))
	}
	if runes[len(runes)-1] != '…' {
		t.Errorf("truncated snippet should end with ellipsis, got %q", string(runes[len(runes)-10:]))
	}
}

func TestLookupSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: context.DeadlineExceeded}
	engine := NewEngine(&fakeEmbedder{}, searcher, "city-events-kb", 5, 200)

	_, err := engine.Lookup(context.Background(), Query{City: "Miami"})
	if err == nil {
		t.Fatal("expected error when backend fails")
	}
	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeRetrievalFailed {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeRetrievalFailed)
	}
}

func TestLookupSkipsBlankSnippets(t *testing.T) {
	searcher := &fakeSearcher{results: []*VectorSearchResult{
		{ID: "1", TextContent: "  "},
		{ID: "2", TextContent: "Night Market in Taipei on 2026-05-01: street food"},
		nil,
	}}
	engine := NewEngine(&fakeEmbedder{}, searcher, "city-events-kb", 5, 200)

	out, err := engine.Lookup(context.Background(), Query{City: "Taipei"})
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	// 命中数按后端原始返回计，空白片段只从拼接文本中剔除
	if out.HitCount != 3 {
		t.Errorf("HitCount = %d, want 3", out.HitCount)
	}
	if strings.Contains(out.Events, "\n") {
		t.Errorf("Events should hold a single snippet, got %q", out.Events)
	}
}
