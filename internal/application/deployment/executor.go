package deployment

import (
	"context"
	"fmt"

	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
	apperrors "city-events-api/pkg/errors"
	"city-events-api/pkg/logger"
	"city-events-api/pkg/metrics"
)

// Executor 按拓扑顺序执行部署图，每一步的状态都写入资源登记表。
// 任一资源创建失败时，已创建的资源按相反顺序回滚。
type Executor struct {
	registry repository.ResourceRepository
}

func NewExecutor(registry repository.ResourceRepository) *Executor {
	return &Executor{registry: registry}
}

// Apply 创建整个栈。
// 返回的错误指明首个失败的资源；回滚期间的次生错误只记日志，不掩盖原始错误。
func (e *Executor) Apply(ctx context.Context, graph *Graph) error {
	ordered, err := graph.Resolve()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDeploymentFailed, "invalid deployment graph")
	}

	created := make([]*applied, 0, len(ordered))
	for _, res := range ordered {
		record := entity.NewDeploymentResource(graph.StackName, res.Type, res.Name)
		record.BeginCreate()
		e.save(ctx, record)

		logger.Info(ctx, "creating deployment resource",
			"stack", graph.StackName, "resource_type", string(res.Type), "name", res.Name)

		if err := res.Create(ctx); err != nil {
			record.MarkFailed(err.Error())
			e.save(ctx, record)
			metrics.DeploymentResourceTotal.WithLabelValues(string(res.Type), "failed").Inc()

			e.rollback(ctx, graph.StackName, created)
			return apperrors.Wrap(err, apperrors.CodeDeploymentFailed,
				fmt.Sprintf("resource %s (%s) failed to create", res.Name, res.Type))
		}

		record.MarkCreated()
		e.save(ctx, record)
		metrics.DeploymentResourceTotal.WithLabelValues(string(res.Type), "created").Inc()
		created = append(created, &applied{res: res, record: record})
	}

	logger.Info(ctx, "deployment stack applied", "stack", graph.StackName, "resources", len(created))
	return nil
}

// Destroy 逆序删除整个栈的资源。
func (e *Executor) Destroy(ctx context.Context, graph *Graph) error {
	ordered, err := graph.Resolve()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDeploymentFailed, "invalid deployment graph")
	}

	var firstErr error
	for i := len(ordered) - 1; i >= 0; i-- {
		res := ordered[i]
		if res.Delete == nil {
			continue
		}
		if err := res.Delete(ctx); err != nil {
			logger.Error(ctx, "delete deployment resource", err,
				"stack", graph.StackName, "resource_type", string(res.Type))
			if firstErr == nil {
				firstErr = apperrors.Wrap(err, apperrors.CodeDeploymentFailed,
					fmt.Sprintf("resource %s (%s) failed to delete", res.Name, res.Type))
			}
			continue
		}
		metrics.DeploymentResourceTotal.WithLabelValues(string(res.Type), "deleted").Inc()
	}
	if firstErr != nil {
		return firstErr
	}
	if e.registry != nil {
		if err := e.registry.DeleteByStack(ctx, graph.StackName); err != nil {
			return apperrors.Wrap(err, apperrors.CodeDeploymentFailed, "clear stack registry")
		}
	}
	logger.Info(ctx, "deployment stack destroyed", "stack", graph.StackName)
	return nil
}

type applied struct {
	res    *Resource
	record *entity.DeploymentResource
}

// rollback 逆序删除已创建的资源，尽力而为。
func (e *Executor) rollback(ctx context.Context, stack string, created []*applied) {
	if len(created) == 0 {
		return
	}
	metrics.DeploymentRollbacks.WithLabelValues(stack).Inc()
	for i := len(created) - 1; i >= 0; i-- {
		a := created[i]
		if a.res.Delete != nil {
			if err := a.res.Delete(ctx); err != nil {
				logger.Error(ctx, "rollback deployment resource", err,
					"stack", stack, "resource_type", string(a.res.Type))
				continue
			}
		}
		a.record.MarkDeleted()
		e.save(ctx, a.record)
		metrics.DeploymentResourceTotal.WithLabelValues(string(a.res.Type), "deleted").Inc()
	}
	logger.Warn(ctx, "deployment stack rolled back", "stack", stack, "resources", len(created))
}

func (e *Executor) save(ctx context.Context, record *entity.DeploymentResource) {
	if e.registry == nil {
		return
	}
	if err := e.registry.Save(ctx, record); err != nil {
		logger.Warn(ctx, "persist resource state", "resource", record.Name, "error", err.Error())
	}
}
