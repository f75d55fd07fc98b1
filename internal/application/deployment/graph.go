// Package deployment 实现检索栈的资源编排：按依赖顺序创建，失败时逆序回滚
package deployment

import (
	"context"
	"fmt"

	"city-events-api/internal/domain/entity"
)

// Resource 部署图中的一个节点。
// Create 与 Delete 由基础设施层注入，图本身只关心依赖顺序。
type Resource struct {
	Type      entity.ResourceType
	Name      string
	DependsOn []entity.ResourceType

	Create func(ctx context.Context) error
	Delete func(ctx context.Context) error
}

// Graph 部署资源依赖图。
type Graph struct {
	StackName string
	resources []*Resource
}

func NewGraph(stackName string) *Graph {
	return &Graph{StackName: stackName}
}

// Add 添加资源节点，声明顺序不影响执行顺序
func (g *Graph) Add(res *Resource) *Graph {
	g.resources = append(g.resources, res)
	return g
}

// Resolve 拓扑排序，返回可安全顺序创建的资源列表。
// 未声明的依赖或环路均返回错误。
func (g *Graph) Resolve() ([]*Resource, error) {
	byType := make(map[entity.ResourceType]*Resource, len(g.resources))
	for _, r := range g.resources {
		if _, dup := byType[r.Type]; dup {
			return nil, fmt.Errorf("duplicate resource type %s in stack %s", r.Type, g.StackName)
		}
		byType[r.Type] = r
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[entity.ResourceType]int, len(g.resources))
	ordered := make([]*Resource, 0, len(g.resources))

	var visit func(r *Resource) error
	visit = func(r *Resource) error {
		switch state[r.Type] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle through resource %s", r.Type)
		}
		state[r.Type] = visiting
		for _, dep := range r.DependsOn {
			depRes, ok := byType[dep]
			if !ok {
				return fmt.Errorf("resource %s depends on undeclared resource %s", r.Type, dep)
			}
			if err := visit(depRes); err != nil {
				return err
			}
		}
		state[r.Type] = done
		ordered = append(ordered, r)
		return nil
	}

	for _, r := range g.resources {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
