// Package entity 定义领域实体
package entity

import (
	"fmt"
	"strings"
)

// CorpusEvent 语料库中的一条城市活动记录
type CorpusEvent struct {
	City        string   `json:"city"`
	EventName   string   `json:"event_name"`
	EventDate   string   `json:"event_date"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

// DocumentID 生成确定性的文档 ID
// 同一条活动记录在重复摄取时必须得到相同的 ID，以保证覆盖而非重复
func (e *CorpusEvent) DocumentID() string {
	return fmt.Sprintf("%s|%s|%s", e.City, e.EventDate, e.EventName)
}

// DocumentText 生成用于向量化的文档文本
func (e *CorpusEvent) DocumentText() string {
	return fmt.Sprintf("%s in %s on %s: %s", e.EventName, e.City, e.EventDate, e.Description)
}

// Validate 检查必填字段
func (e *CorpusEvent) Validate() error {
	var missing []string
	if e.City == "" {
		missing = append(missing, "city")
	}
	if e.EventName == "" {
		missing = append(missing, "event_name")
	}
	if e.EventDate == "" {
		missing = append(missing, "event_date")
	}
	if e.Description == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("corpus event missing fields: %s", strings.Join(missing, ", "))
	}
	return nil
}
