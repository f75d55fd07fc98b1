package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"city-events-api/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(&config.EmbeddingConfig{
		Endpoint:  serverURL,
		Model:     "test-model",
		BatchSize: 8,
	})
}

func TestEmbedStringsReturnsVectorPerText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		out := embedResponse{Embeddings: make([][]float64, len(req.Texts))}
		for i := range req.Texts {
			out.Embeddings[i] = []float64{0.1, 0.2}
		}
		_ = json.NewEncoder(w).Encode(&out)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	vecs, err := c.EmbedStrings(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("EmbedStrings: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
}

func TestEmbedStringsRejectsShortResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// 无论请求几条文本都只回一条向量
		_ = json.NewEncoder(w).Encode(&embedResponse{
			Embeddings: [][]float64{{0.1, 0.2}},
		})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	if _, err := c.EmbedStrings(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error when response has fewer embeddings than texts")
	}
}
