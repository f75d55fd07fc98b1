package deployment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"city-events-api/internal/domain/entity"
	apperrors "city-events-api/pkg/errors"
)

type memRegistry struct {
	records map[string]*entity.DeploymentResource
}

func newMemRegistry() *memRegistry {
	return &memRegistry{records: make(map[string]*entity.DeploymentResource)}
}

func (m *memRegistry) Save(_ context.Context, res *entity.DeploymentResource) error {
	cp := *res
	m.records[string(res.ResourceType)] = &cp
	return nil
}

func (m *memRegistry) ListByStack(context.Context, string) ([]*entity.DeploymentResource, error) {
	out := make([]*entity.DeploymentResource, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRegistry) DeleteByStack(context.Context, string) error {
	m.records = make(map[string]*entity.DeploymentResource)
	return nil
}

// trackedGraph 构造一个记录 Create/Delete 调用顺序的标准六资源图。
func trackedGraph(failAt entity.ResourceType) (*Graph, *[]string) {
	var ops []string
	g := NewGraph("city-events-rag")

	add := func(typ entity.ResourceType, deps ...entity.ResourceType) {
		g.Add(&Resource{
			Type:      typ,
			Name:      string(typ),
			DependsOn: deps,
			Create: func(context.Context) error {
				if typ == failAt {
					return errors.New("provider unavailable")
				}
				ops = append(ops, "create:"+string(typ))
				return nil
			},
			Delete: func(context.Context) error {
				ops = append(ops, "delete:"+string(typ))
				return nil
			},
		})
	}

	add(entity.ResourceVectorCollection)
	add(entity.ResourceVectorIndex, entity.ResourceVectorCollection)
	add(entity.ResourceKnowledgeBase, entity.ResourceVectorIndex)
	add(entity.ResourceDataSource, entity.ResourceKnowledgeBase)
	add(entity.ResourceAccessGrant, entity.ResourceDataSource)
	add(entity.ResourceEndpoint, entity.ResourceAccessGrant)
	return g, &ops
}

func TestExecutorAppliesInOrder(t *testing.T) {
	g, ops := trackedGraph("")
	registry := newMemRegistry()

	if err := NewExecutor(registry).Apply(context.Background(), g); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{
		"create:vector_collection",
		"create:vector_index",
		"create:knowledge_base",
		"create:data_source",
		"create:access_grant",
		"create:endpoint",
	}
	if len(*ops) != len(want) {
		t.Fatalf("ops = %v, want %v", *ops, want)
	}
	for i, op := range want {
		if (*ops)[i] != op {
			t.Errorf("op %d = %s, want %s", i, (*ops)[i], op)
		}
	}

	for typ, rec := range registry.records {
		if rec.State != entity.ResourceStateCreated {
			t.Errorf("resource %s state = %s, want created", typ, rec.State)
		}
	}
}

func TestExecutorRollsBackOnFailure(t *testing.T) {
	// 端点创建失败：此前创建的五个资源必须逆序回滚
	g, ops := trackedGraph(entity.ResourceEndpoint)
	registry := newMemRegistry()

	err := NewExecutor(registry).Apply(context.Background(), g)
	if err == nil {
		t.Fatal("expected deployment failure")
	}

	appErr := apperrors.AsAppError(err)
	if appErr.Code != apperrors.CodeDeploymentFailed {
		t.Errorf("error code = %s, want %s", appErr.Code, apperrors.CodeDeploymentFailed)
	}
	if !strings.Contains(appErr.Message, "endpoint") {
		t.Errorf("error should name the failing resource, got %q", appErr.Message)
	}

	want := []string{
		"create:vector_collection",
		"create:vector_index",
		"create:knowledge_base",
		"create:data_source",
		"create:access_grant",
		"delete:access_grant",
		"delete:data_source",
		"delete:knowledge_base",
		"delete:vector_index",
		"delete:vector_collection",
	}
	if len(*ops) != len(want) {
		t.Fatalf("ops = %v, want %v", *ops, want)
	}
	for i, op := range want {
		if (*ops)[i] != op {
			t.Errorf("op %d = %s, want %s", i, (*ops)[i], op)
		}
	}

	if rec := registry.records[string(entity.ResourceEndpoint)]; rec.State != entity.ResourceStateFailed {
		t.Errorf("endpoint state = %s, want failed", rec.State)
	}
	if rec := registry.records[string(entity.ResourceAccessGrant)]; rec.State != entity.ResourceStateDeleted {
		t.Errorf("access grant state = %s, want deleted after rollback", rec.State)
	}
}

func TestExecutorFailureOnFirstResource(t *testing.T) {
	g, ops := trackedGraph(entity.ResourceVectorCollection)

	err := NewExecutor(newMemRegistry()).Apply(context.Background(), g)
	if err == nil {
		t.Fatal("expected deployment failure")
	}
	if len(*ops) != 0 {
		t.Errorf("no resource should be created or rolled back, got %v", *ops)
	}
}

func TestExecutorDestroyReverseOrder(t *testing.T) {
	g, ops := trackedGraph("")
	registry := newMemRegistry()
	exec := NewExecutor(registry)

	if err := exec.Apply(context.Background(), g); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	*ops = nil

	if err := exec.Destroy(context.Background(), g); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	want := []string{
		"delete:endpoint",
		"delete:access_grant",
		"delete:data_source",
		"delete:knowledge_base",
		"delete:vector_index",
		"delete:vector_collection",
	}
	for i, op := range want {
		if (*ops)[i] != op {
			t.Errorf("op %d = %s, want %s", i, (*ops)[i], op)
		}
	}
	if len(registry.records) != 0 {
		t.Errorf("registry should be cleared after destroy, got %d records", len(registry.records))
	}
}
