package deployment

import (
	"context"
	"errors"
	"testing"

	"city-events-api/internal/config"
	"city-events-api/internal/domain/entity"
)

type noopVector struct{}

func (noopVector) EnsureCollection(context.Context) error { return nil }
func (noopVector) EnsureIndex(context.Context) error      { return nil }
func (noopVector) DropIndex(context.Context) error        { return nil }
func (noopVector) DropCollection(context.Context) error   { return nil }

type fakeArtifact struct{ exists bool }

func (f *fakeArtifact) Exists(context.Context, string, string) (bool, error) {
	return f.exists, nil
}

type memKBs struct {
	kbs map[string]*entity.KnowledgeBase
}

func (m *memKBs) Create(_ context.Context, kb *entity.KnowledgeBase) error {
	if kb.ID == "" {
		kb.ID = "kb-" + kb.Name
	}
	m.kbs[kb.Name] = kb
	return nil
}

func (m *memKBs) GetByName(_ context.Context, name string) (*entity.KnowledgeBase, error) {
	kb, ok := m.kbs[name]
	if !ok {
		return nil, errors.New("knowledge base not found")
	}
	return kb, nil
}

func (m *memKBs) Delete(_ context.Context, name string) error {
	delete(m.kbs, name)
	return nil
}

type memSources struct {
	sources map[string]*entity.DataSource
}

func (m *memSources) Create(_ context.Context, ds *entity.DataSource) error {
	m.sources[ds.Name] = ds
	return nil
}

func (m *memSources) GetByName(_ context.Context, name string) (*entity.DataSource, error) {
	ds, ok := m.sources[name]
	if !ok {
		return nil, errors.New("data source not found")
	}
	return ds, nil
}

func (m *memSources) Update(_ context.Context, ds *entity.DataSource) error {
	m.sources[ds.Name] = ds
	return nil
}

func (m *memSources) Delete(_ context.Context, name string) error {
	delete(m.sources, name)
	return nil
}

type memGrantRepo struct {
	created []*entity.AccessGrant
}

func (m *memGrantRepo) Create(_ context.Context, grant *entity.AccessGrant) error {
	m.created = append(m.created, grant)
	return nil
}

func (m *memGrantRepo) GetByAPIKey(_ context.Context, apiKey string) (*entity.AccessGrant, error) {
	for _, g := range m.created {
		if g.APIKey == apiKey {
			return g, nil
		}
	}
	return nil, errors.New("api key not granted")
}

func (m *memGrantRepo) GetByName(_ context.Context, name string) (*entity.AccessGrant, error) {
	for _, g := range m.created {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, errors.New("access grant not found")
}

func (m *memGrantRepo) Revoke(_ context.Context, apiKey string) error {
	for _, g := range m.created {
		if g.APIKey == apiKey {
			g.Revoke()
		}
	}
	return nil
}

func (m *memGrantRepo) DeleteByName(_ context.Context, name string) error {
	kept := m.created[:0]
	for _, g := range m.created {
		if g.Name != name {
			kept = append(kept, g)
		}
	}
	m.created = kept
	return nil
}

func stackConfig() *config.Config {
	return &config.Config{
		Deployment: config.DeploymentConfig{
			StackName:             "city-events",
			VectorCollectionName:  "event_chunks",
			VectorIndexName:       "event_chunks_idx",
			KnowledgeBaseName:     "city-events-kb",
			DataSourceName:        "city-events-corpus",
			RetrievalFunctionName: "event-lookup",
		},
		Storage: config.StorageConfig{GCS: config.GCSConfig{
			CorpusBucket:   "corpus-bucket",
			CorpusObject:   "corpus.json",
			ArtifactBucket: "artifact-bucket",
			ArtifactObject: "lookup.zip",
		}},
		Embedding: config.EmbeddingConfig{Model: "test-model", Dimension: 4},
	}
}

func newTestBuilder() (*StackBuilder, *memGrantRepo) {
	grants := &memGrantRepo{}
	b := NewStackBuilder(
		stackConfig(),
		noopVector{},
		&fakeArtifact{exists: true},
		&memKBs{kbs: map[string]*entity.KnowledgeBase{}},
		&memSources{sources: map[string]*entity.DataSource{}},
		grants,
	)
	return b, grants
}

func TestStackApplyIssuesGrantOnce(t *testing.T) {
	b, grants := newTestBuilder()
	exec := NewExecutor(nil)

	if err := exec.Apply(context.Background(), b.Build()); err != nil {
		t.Fatalf("first Apply: %v", err)
	}
	if len(grants.created) != 1 {
		t.Fatalf("grants created = %d, want 1", len(grants.created))
	}
	if b.IssuedGrant == nil {
		t.Fatal("first Apply should expose the issued grant")
	}
	secret := b.IssuedGrant.Secret

	// 重复 Apply 不得重复签发
	b.IssuedGrant = nil
	if err := exec.Apply(context.Background(), b.Build()); err != nil {
		t.Fatalf("second Apply: %v", err)
	}
	if len(grants.created) != 1 {
		t.Errorf("grants created after re-apply = %d, want 1", len(grants.created))
	}
	if b.IssuedGrant != nil {
		t.Error("re-apply should not issue new credentials")
	}
	if grants.created[0].Secret != secret {
		t.Error("existing grant secret must be unchanged after re-apply")
	}
}

func TestStackApplyReissuesRevokedGrant(t *testing.T) {
	b, grants := newTestBuilder()
	exec := NewExecutor(nil)

	if err := exec.Apply(context.Background(), b.Build()); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := grants.Revoke(context.Background(), grants.created[0].APIKey); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	b.IssuedGrant = nil
	if err := exec.Apply(context.Background(), b.Build()); err != nil {
		t.Fatalf("re-Apply: %v", err)
	}
	if b.IssuedGrant == nil {
		t.Fatal("revoked grant should be replaced with fresh credentials")
	}
}
