// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"city-events-api/internal/domain/entity"
)

// DeploymentResourceResponse 部署资源响应
type DeploymentResourceResponse struct {
	ResourceType string `json:"resource_type"`
	Name         string `json:"name"`
	State        string `json:"state"`
	ErrorMessage string `json:"error_message,omitempty"`
	UpdatedAt    string `json:"updated_at"`
}

// StackResponse 部署栈响应
type StackResponse struct {
	Stack     string                        `json:"stack"`
	Resources []*DeploymentResourceResponse `json:"resources"`
}

// ToStackResponse 转换部署资源记录
func ToStackResponse(stack string, resources []*entity.DeploymentResource) *StackResponse {
	out := make([]*DeploymentResourceResponse, 0, len(resources))
	for _, r := range resources {
		out = append(out, &DeploymentResourceResponse{
			ResourceType: string(r.ResourceType),
			Name:         r.Name,
			State:        string(r.State),
			ErrorMessage: r.ErrorMessage,
			UpdatedAt:    r.UpdatedAt.Format(time.RFC3339),
		})
	}
	return &StackResponse{
		Stack:     stack,
		Resources: out,
	}
}
