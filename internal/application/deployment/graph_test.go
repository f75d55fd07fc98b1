package deployment

import (
	"testing"

	"city-events-api/internal/domain/entity"
)

func TestGraphResolveOrdersByDependency(t *testing.T) {
	g := NewGraph("test-stack")
	// 故意乱序声明
	g.Add(&Resource{Type: entity.ResourceEndpoint, DependsOn: []entity.ResourceType{entity.ResourceAccessGrant}})
	g.Add(&Resource{Type: entity.ResourceVectorIndex, DependsOn: []entity.ResourceType{entity.ResourceVectorCollection}})
	g.Add(&Resource{Type: entity.ResourceAccessGrant, DependsOn: []entity.ResourceType{entity.ResourceDataSource}})
	g.Add(&Resource{Type: entity.ResourceVectorCollection})
	g.Add(&Resource{Type: entity.ResourceDataSource, DependsOn: []entity.ResourceType{entity.ResourceKnowledgeBase}})
	g.Add(&Resource{Type: entity.ResourceKnowledgeBase, DependsOn: []entity.ResourceType{entity.ResourceVectorIndex}})

	ordered, err := g.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []entity.ResourceType{
		entity.ResourceVectorCollection,
		entity.ResourceVectorIndex,
		entity.ResourceKnowledgeBase,
		entity.ResourceDataSource,
		entity.ResourceAccessGrant,
		entity.ResourceEndpoint,
	}
	if len(ordered) != len(want) {
		t.Fatalf("resolved %d resources, want %d", len(ordered), len(want))
	}
	for i, typ := range want {
		if ordered[i].Type != typ {
			t.Errorf("position %d = %s, want %s", i, ordered[i].Type, typ)
		}
	}
}

func TestGraphResolveRejectsCycle(t *testing.T) {
	g := NewGraph("test-stack")
	g.Add(&Resource{Type: entity.ResourceVectorCollection, DependsOn: []entity.ResourceType{entity.ResourceVectorIndex}})
	g.Add(&Resource{Type: entity.ResourceVectorIndex, DependsOn: []entity.ResourceType{entity.ResourceVectorCollection}})

	if _, err := g.Resolve(); err == nil {
		t.Fatal("expected cycle error")
	}
}

func TestGraphResolveRejectsUndeclaredDependency(t *testing.T) {
	g := NewGraph("test-stack")
	g.Add(&Resource{Type: entity.ResourceVectorIndex, DependsOn: []entity.ResourceType{entity.ResourceVectorCollection}})

	if _, err := g.Resolve(); err == nil {
		t.Fatal("expected undeclared dependency error")
	}
}

func TestGraphResolveRejectsDuplicateType(t *testing.T) {
	g := NewGraph("test-stack")
	g.Add(&Resource{Type: entity.ResourceEndpoint})
	g.Add(&Resource{Type: entity.ResourceEndpoint})

	if _, err := g.Resolve(); err == nil {
		t.Fatal("expected duplicate resource error")
	}
}
