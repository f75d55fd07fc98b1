// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"city-events-api/internal/application/retrieval"
	"city-events-api/internal/interfaces/http/dto"
	"city-events-api/pkg/errors"
	"city-events-api/pkg/logger"
)

// LookupHandler 活动检索处理器
type LookupHandler struct {
	engine *retrieval.Engine
}

// NewLookupHandler 创建活动检索处理器
func NewLookupHandler(engine *retrieval.Engine) *LookupHandler {
	return &LookupHandler{
		engine: engine,
	}
}

// Lookup 检索城市活动
// @Summary 检索城市活动
// @Description 根据城市或自由提问检索相关活动片段
// @Tags Retrieval
// @Accept json
// @Produce json
// @Param body body dto.LookupRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.LookupResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/events/lookup [post]
func (h *LookupHandler) Lookup(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.engine.Lookup(ctx, retrieval.Query{
		City:     req.City,
		Question: req.Question,
	})
	if err != nil {
		appErr := errors.AsAppError(err)
		if appErr.Code != errors.CodeInvalidParam {
			logger.Error(ctx, "event lookup failed", err)
		}
		dto.AppError(c, appErr)
		return
	}

	dto.Success(c, &dto.LookupResponse{
		Events:   result.Events,
		HitCount: result.HitCount,
	})
}
