package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	apperrors "city-events-api/pkg/errors"
	"city-events-api/pkg/logger"
	"city-events-api/pkg/metrics"
)

const (
	defaultNumResults      = 5
	defaultSnippetMaxRunes = 200
)

// Engine 检索引擎，将自然语言主题转换为向量召回并拼装结果文本。
type Engine struct {
	embedder embedding.Embedder
	vector   VectorSearcher

	knowledgeBase   string
	numResults      int
	snippetMaxRunes int
}

func NewEngine(embedder embedding.Embedder, vector VectorSearcher, knowledgeBase string, numResults, snippetMaxRunes int) *Engine {
	if numResults <= 0 {
		numResults = defaultNumResults
	}
	if snippetMaxRunes <= 0 {
		snippetMaxRunes = defaultSnippetMaxRunes
	}
	return &Engine{
		embedder:        embedder,
		vector:          vector,
		knowledgeBase:   knowledgeBase,
		numResults:      numResults,
		snippetMaxRunes: snippetMaxRunes,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

// Topic 根据请求构造检索主题
// question 优先；两者皆空时返回 ErrMissingTopic
func Topic(q Query) (string, error) {
	question := strings.TrimSpace(q.Question)
	city := strings.TrimSpace(q.City)
	if question != "" {
		return question, nil
	}
	if city != "" {
		return fmt.Sprintf("events in %s", city), nil
	}
	return "", ErrMissingTopic
}

// Lookup 执行一次检索：构造主题 -> 向量化 -> TopK 召回 -> 拼装片段文本。
// 零命中不是错误，返回空的 Events 文本。
func (e *Engine) Lookup(ctx context.Context, q Query) (*Result, error) {
	topic, err := Topic(q)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidParam, "either city or question is required")
	}

	if !e.Enabled() {
		metrics.LookupTotal.WithLabelValues(e.kbLabel(), "error").Inc()
		return nil, apperrors.Wrap(ErrVectorDisabled, apperrors.CodeRetrievalFailed, "retrieval backend unavailable")
	}

	start := time.Now()

	vec, err := e.embedTopic(ctx, topic)
	if err != nil {
		metrics.LookupTotal.WithLabelValues(e.knowledgeBase, "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeEmbeddingFailed, "embed lookup topic")
	}

	results, err := e.vector.SearchChunks(ctx, &VectorSearchParams{
		QueryVector: vec,
		TopK:        e.numResults,
	})
	if err != nil {
		metrics.LookupTotal.WithLabelValues(e.knowledgeBase, "error").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeRetrievalFailed, "vector search failed")
	}

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		text := strings.TrimSpace(r.TextContent)
		if text == "" {
			continue
		}
		snippets = append(snippets, truncateRunes(text, e.snippetMaxRunes))
	}

	// HitCount 反映后端原始命中数，空白片段只影响拼接文本
	out := &Result{
		Events:   strings.Join(snippets, "\n"),
		HitCount: len(results),
	}

	metrics.LookupTotal.WithLabelValues(e.knowledgeBase, "success").Inc()
	metrics.LookupDuration.WithLabelValues(e.knowledgeBase).Observe(time.Since(start).Seconds())
	metrics.LookupHits.WithLabelValues(e.knowledgeBase).Observe(float64(out.HitCount))

	logger.Info(ctx, "event lookup completed",
		"topic", topic,
		"hit_count", out.HitCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return out, nil
}

func (e *Engine) kbLabel() string {
	if e == nil {
		return ""
	}
	return e.knowledgeBase
}

func (e *Engine) embedTopic(ctx context.Context, topic string) ([]float32, error) {
	v64, err := e.embedder.EmbedStrings(ctx, []string{topic})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	vec := v64[0]
	out := make([]float32, 0, len(vec))
	for _, x := range vec {
		out = append(out, float32(x))
	}
	return out, nil
}

// truncateRunes 按 rune 截断文本并追加省略号，避免截断多字节字符
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
