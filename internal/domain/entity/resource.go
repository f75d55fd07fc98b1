package entity

import "time"

// ResourceType 部署资源类型
type ResourceType string

const (
	ResourceVectorCollection ResourceType = "vector_collection"
	ResourceVectorIndex      ResourceType = "vector_index"
	ResourceKnowledgeBase    ResourceType = "knowledge_base"
	ResourceDataSource       ResourceType = "data_source"
	ResourceAccessGrant      ResourceType = "access_grant"
	ResourceEndpoint         ResourceType = "endpoint"
)

// ResourceState 部署资源生命周期状态
type ResourceState string

const (
	ResourceStatePending  ResourceState = "pending"
	ResourceStateCreating ResourceState = "creating"
	ResourceStateCreated  ResourceState = "created"
	ResourceStateFailed   ResourceState = "failed"
	ResourceStateDeleted  ResourceState = "deleted"
)

// DeploymentResource 部署栈中的一个资源及其状态
type DeploymentResource struct {
	ID           string        `json:"id"`
	StackName    string        `json:"stack_name"`
	ResourceType ResourceType  `json:"resource_type"`
	Name         string        `json:"name"`
	State        ResourceState `json:"state"`
	ErrorMessage string        `json:"error_message,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// NewDeploymentResource 创建待部署的资源记录
func NewDeploymentResource(stack string, typ ResourceType, name string) *DeploymentResource {
	now := time.Now()
	return &DeploymentResource{
		StackName:    stack,
		ResourceType: typ,
		Name:         name,
		State:        ResourceStatePending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// BeginCreate 标记资源开始创建
func (r *DeploymentResource) BeginCreate() {
	r.State = ResourceStateCreating
	r.UpdatedAt = time.Now()
}

// MarkCreated 标记资源创建完成
func (r *DeploymentResource) MarkCreated() {
	r.State = ResourceStateCreated
	r.ErrorMessage = ""
	r.UpdatedAt = time.Now()
}

// MarkFailed 标记资源创建失败
func (r *DeploymentResource) MarkFailed(errMsg string) {
	r.State = ResourceStateFailed
	r.ErrorMessage = errMsg
	r.UpdatedAt = time.Now()
}

// MarkDeleted 标记资源已回滚删除
func (r *DeploymentResource) MarkDeleted() {
	r.State = ResourceStateDeleted
	r.UpdatedAt = time.Now()
}
