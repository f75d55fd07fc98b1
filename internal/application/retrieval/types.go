// Package retrieval 实现城市活动的语义检索
package retrieval

// Query 检索请求输入。
type Query struct {
	City     string
	Question string
}

// Result 检索结果，Events 为换行拼接的片段文本。
type Result struct {
	Events   string
	HitCount int
}
