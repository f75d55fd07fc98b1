// Package dto 提供 HTTP 层数据传输对象
package dto

// LookupRequest 活动检索请求
// city 与 question 至少填一个；多余字段被忽略
type LookupRequest struct {
	City     string `json:"city" binding:"max=256"`
	Question string `json:"question" binding:"max=2000"`
}

// LookupResponse 活动检索响应
type LookupResponse struct {
	Events   string `json:"events"`
	HitCount int    `json:"hit_count"`
}
