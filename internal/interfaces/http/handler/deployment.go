package handler

import (
	"github.com/gin-gonic/gin"

	"city-events-api/internal/domain/repository"
	"city-events-api/internal/interfaces/http/dto"
	"city-events-api/pkg/logger"
)

// DeploymentHandler 部署栈状态处理器
type DeploymentHandler struct {
	resources repository.ResourceRepository
}

// NewDeploymentHandler 创建部署栈状态处理器
func NewDeploymentHandler(resources repository.ResourceRepository) *DeploymentHandler {
	return &DeploymentHandler{
		resources: resources,
	}
}

// GetStack 查询部署栈资源状态
// @Summary 查询部署栈资源状态
// @Description 按创建顺序返回栈内所有资源的生命周期状态
// @Tags Deployment
// @Produce json
// @Param stack path string true "栈名称"
// @Success 200 {object} dto.Response[dto.StackResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/deployments/{stack} [get]
func (h *DeploymentHandler) GetStack(c *gin.Context) {
	ctx := c.Request.Context()
	stack := c.Param("stack")

	resources, err := h.resources.ListByStack(ctx, stack)
	if err != nil {
		logger.Error(ctx, "failed to list stack resources", err, "stack", stack)
		dto.InternalError(c, "failed to list stack resources")
		return
	}

	if len(resources) == 0 {
		dto.NotFound(c, "deployment stack not found")
		return
	}

	dto.Success(c, dto.ToStackResponse(stack, resources))
}
