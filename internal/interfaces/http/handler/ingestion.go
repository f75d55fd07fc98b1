package handler

import (
	"github.com/gin-gonic/gin"

	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
	"city-events-api/internal/infrastructure/messaging"
	"city-events-api/internal/interfaces/http/dto"
	"city-events-api/pkg/errors"
	"city-events-api/pkg/logger"
)

// IngestionHandler 摄取任务处理器
type IngestionHandler struct {
	jobs              repository.IngestionJobRepository
	syncState         repository.SyncStateStore
	producer          *messaging.Producer
	defaultDataSource string
}

// NewIngestionHandler 创建摄取任务处理器
func NewIngestionHandler(
	jobs repository.IngestionJobRepository,
	syncState repository.SyncStateStore,
	producer *messaging.Producer,
	defaultDataSource string,
) *IngestionHandler {
	return &IngestionHandler{
		jobs:              jobs,
		syncState:         syncState,
		producer:          producer,
		defaultDataSource: defaultDataSource,
	}
}

// CreateJob 创建摄取任务
// @Summary 创建摄取任务
// @Description 创建一次数据源摄取任务并投递到工作队列
// @Tags Ingestion
// @Accept json
// @Produce json
// @Param body body dto.CreateIngestionJobRequest true "创建请求"
// @Success 202 {object} dto.Response[dto.IngestionJobResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /v1/ingestion/jobs [post]
func (h *IngestionHandler) CreateJob(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateIngestionJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body")
		return
	}

	dataSource := req.DataSource
	if dataSource == "" {
		dataSource = h.defaultDataSource
	}
	if dataSource == "" {
		dto.BadRequest(c, "data_source is required")
		return
	}

	job := entity.NewIngestionJob(dataSource)
	if err := h.jobs.Create(ctx, job); err != nil {
		logger.Error(ctx, "failed to create ingestion job", err)
		dto.InternalError(c, "failed to create ingestion job")
		return
	}

	if _, err := h.producer.PublishIngestionJob(ctx, &messaging.IngestionJobMessage{
		JobID:          job.ID,
		DataSourceName: dataSource,
	}); err != nil {
		// 任务已落库但未入队，标记失败避免悬挂在 pending
		logger.Error(ctx, "failed to publish ingestion job", err, "job_id", job.ID)
		job.Fail("failed to enqueue job")
		if updateErr := h.jobs.Update(ctx, job); updateErr != nil {
			logger.Error(ctx, "failed to mark ingestion job failed", updateErr, "job_id", job.ID)
		}
		dto.InternalError(c, "failed to enqueue ingestion job")
		return
	}

	logger.Info(ctx, "ingestion job enqueued", "job_id", job.ID, "data_source", dataSource)
	dto.Accepted(c, dto.ToIngestionJobResponse(job))
}

// GetJob 获取摄取任务详情
// @Summary 获取摄取任务详情
// @Tags Ingestion
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.IngestionJobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/ingestion/jobs/{jid} [get]
func (h *IngestionHandler) GetJob(c *gin.Context) {
	ctx := c.Request.Context()
	jobID := c.Param("jid")

	job, err := h.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.IsAppError(err) {
			dto.AppError(c, errors.AsAppError(err))
			return
		}
		logger.Error(ctx, "failed to get ingestion job", err, "job_id", jobID)
		dto.InternalError(c, "failed to get ingestion job")
		return
	}

	dto.Success(c, dto.ToIngestionJobResponse(job))
}

// ListJobs 列出数据源下的摄取任务
// @Summary 列出数据源下的摄取任务
// @Tags Ingestion
// @Produce json
// @Param name path string true "数据源名称"
// @Success 200 {object} dto.Response[dto.IngestionJobListResponse]
// @Router /v1/datasources/{name}/jobs [get]
func (h *IngestionHandler) ListJobs(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	jobs, err := h.jobs.ListByDataSource(ctx, name, 20)
	if err != nil {
		logger.Error(ctx, "failed to list ingestion jobs", err, "data_source", name)
		dto.InternalError(c, "failed to list ingestion jobs")
		return
	}

	out := make([]*dto.IngestionJobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, dto.ToIngestionJobResponse(job))
	}
	dto.Success(c, &dto.IngestionJobListResponse{Jobs: out})
}

// GetSyncState 查询数据源同步状态
// @Summary 查询数据源同步状态
// @Tags Ingestion
// @Produce json
// @Param name path string true "数据源名称"
// @Success 200 {object} dto.Response[dto.SyncStateResponse]
// @Router /v1/datasources/{name}/sync [get]
func (h *IngestionHandler) GetSyncState(c *gin.Context) {
	ctx := c.Request.Context()
	name := c.Param("name")

	state, err := h.syncState.GetSyncState(ctx, name)
	if err != nil {
		logger.Error(ctx, "failed to get sync state", err, "data_source", name)
		dto.InternalError(c, "failed to get sync state")
		return
	}

	dto.Success(c, &dto.SyncStateResponse{
		DataSource: name,
		SyncState:  string(state),
	})
}
