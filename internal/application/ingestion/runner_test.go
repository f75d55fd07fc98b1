package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/embedding"

	"city-events-api/internal/domain/entity"
)

type fakeEmbedder struct{ err error }

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.5, 0.5}
	}
	return out, nil
}

// shortEmbedder 模拟返回向量数少于输入数的异常后端
type shortEmbedder struct{}

func (s *shortEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return [][]float64{{0.5, 0.5}}, nil
}

type fakeIndexer struct {
	ops      []string
	inserted []*EventChunk
	err      error
}

func (f *fakeIndexer) EnsureEventChunksCollection(context.Context) error {
	f.ops = append(f.ops, "ensure")
	return nil
}

func (f *fakeIndexer) DeleteChunksByDataSource(_ context.Context, name string) error {
	f.ops = append(f.ops, "delete:"+name)
	return f.err
}

func (f *fakeIndexer) InsertChunks(_ context.Context, chunks []*EventChunk) error {
	f.ops = append(f.ops, "insert")
	f.inserted = chunks
	return nil
}

type fakeCorpus struct {
	events []*entity.CorpusEvent
	err    error
}

func (f *fakeCorpus) LoadCorpus(context.Context, string, string) ([]*entity.CorpusEvent, error) {
	return f.events, f.err
}

func (f *fakeCorpus) Exists(context.Context, string, string) (bool, error) { return true, nil }

type fakeJobRepo struct {
	job *entity.IngestionJob
}

func (f *fakeJobRepo) Create(_ context.Context, job *entity.IngestionJob) error {
	f.job = job
	return nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id string) (*entity.IngestionJob, error) {
	if f.job == nil || f.job.ID != id {
		return nil, errors.New("job not found")
	}
	return f.job, nil
}

func (f *fakeJobRepo) Update(_ context.Context, job *entity.IngestionJob) error {
	f.job = job
	return nil
}

func (f *fakeJobRepo) ListByDataSource(context.Context, string, int) ([]*entity.IngestionJob, error) {
	return nil, nil
}

type fakeDataSourceRepo struct {
	ds *entity.DataSource
}

func (f *fakeDataSourceRepo) Create(_ context.Context, ds *entity.DataSource) error {
	f.ds = ds
	return nil
}

func (f *fakeDataSourceRepo) GetByName(_ context.Context, name string) (*entity.DataSource, error) {
	if f.ds == nil || f.ds.Name != name {
		return nil, errors.New("data source not found")
	}
	return f.ds, nil
}

func (f *fakeDataSourceRepo) Update(_ context.Context, ds *entity.DataSource) error {
	f.ds = ds
	return nil
}

func (f *fakeDataSourceRepo) Delete(context.Context, string) error { return nil }

type fakeSyncStore struct {
	states []entity.SyncState
}

func (f *fakeSyncStore) SetSyncState(_ context.Context, _ string, state entity.SyncState) error {
	f.states = append(f.states, state)
	return nil
}

func (f *fakeSyncStore) GetSyncState(context.Context, string) (entity.SyncState, error) {
	if len(f.states) == 0 {
		return entity.SyncStateNotStarted, nil
	}
	return f.states[len(f.states)-1], nil
}

func newTestRunner(indexer *fakeIndexer, corpus *fakeCorpus) (*Runner, *fakeJobRepo, *fakeDataSourceRepo, *fakeSyncStore) {
	jobs := &fakeJobRepo{}
	dsRepo := &fakeDataSourceRepo{
		ds: entity.NewDataSource("kb-1", "city-events-corpus", "bucket", "corpus.json"),
	}
	sync := &fakeSyncStore{}
	r := NewRunner(&fakeEmbedder{}, indexer, corpus, jobs, dsRepo, sync, 2)
	return r, jobs, dsRepo, sync
}

func seedJob(jobs *fakeJobRepo) *entity.IngestionJob {
	job := entity.NewIngestionJob("city-events-corpus")
	job.ID = "job-1"
	jobs.job = job
	return job
}

func TestRunnerIngestsCorpus(t *testing.T) {
	indexer := &fakeIndexer{}
	corpus := &fakeCorpus{events: []*entity.CorpusEvent{
		{City: "Miami", EventName: "Boat Show", EventDate: "2026-02-12", Description: "marina exhibits"},
		{City: "Miami", EventName: "Art Week", EventDate: "2026-03-01", Description: "open air galleries"},
	}}
	r, jobs, dsRepo, sync := newTestRunner(indexer, corpus)
	seedJob(jobs)

	if err := r.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if jobs.job.Status != entity.IngestionJobCompleted {
		t.Errorf("job status = %s, want completed", jobs.job.Status)
	}
	if jobs.job.DocumentCount != 2 {
		t.Errorf("document count = %d, want 2", jobs.job.DocumentCount)
	}
	if dsRepo.ds.SyncState != entity.SyncStateActive {
		t.Errorf("sync state = %s, want active", dsRepo.ds.SyncState)
	}

	wantStates := []entity.SyncState{entity.SyncStateInProgress, entity.SyncStateActive}
	if len(sync.states) != len(wantStates) {
		t.Fatalf("sync state transitions = %v, want %v", sync.states, wantStates)
	}
	for i, want := range wantStates {
		if sync.states[i] != want {
			t.Errorf("transition %d = %s, want %s", i, sync.states[i], want)
		}
	}

	// 删除必须发生在写入之前
	wantOps := []string{"ensure", "delete:city-events-corpus", "insert"}
	if len(indexer.ops) != len(wantOps) {
		t.Fatalf("indexer ops = %v, want %v", indexer.ops, wantOps)
	}
	for i, want := range wantOps {
		if indexer.ops[i] != want {
			t.Errorf("op %d = %s, want %s", i, indexer.ops[i], want)
		}
	}

	first := indexer.inserted[0]
	if first.ID != "Miami|2026-02-12|Boat Show" {
		t.Errorf("chunk ID = %q, want deterministic city|date|name", first.ID)
	}
	if first.TextContent != "Boat Show in Miami on 2026-02-12: marina exhibits" {
		t.Errorf("chunk text = %q", first.TextContent)
	}
	if len(first.Vector) == 0 {
		t.Error("chunk vector not populated")
	}
}

func TestRunnerSkipsInvalidEvents(t *testing.T) {
	indexer := &fakeIndexer{}
	corpus := &fakeCorpus{events: []*entity.CorpusEvent{
		{City: "Miami", EventName: "", EventDate: "2026-02-12", Description: "missing name"},
		{City: "Miami", EventName: "Boat Show", EventDate: "2026-02-12", Description: "marina exhibits"},
		nil,
	}}
	r, jobs, _, _ := newTestRunner(indexer, corpus)
	seedJob(jobs)

	if err := r.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(indexer.inserted) != 1 {
		t.Errorf("inserted %d chunks, want 1", len(indexer.inserted))
	}
	if jobs.job.DocumentCount != 1 {
		t.Errorf("document count = %d, want 1", jobs.job.DocumentCount)
	}
}

func TestRunnerCorpusFailure(t *testing.T) {
	indexer := &fakeIndexer{}
	corpus := &fakeCorpus{err: errors.New("object not found")}
	r, jobs, dsRepo, sync := newTestRunner(indexer, corpus)
	seedJob(jobs)

	if err := r.Run(context.Background(), "job-1"); err == nil {
		t.Fatal("expected error when corpus load fails")
	}
	if jobs.job.Status != entity.IngestionJobFailed {
		t.Errorf("job status = %s, want failed", jobs.job.Status)
	}
	if jobs.job.ErrorMessage == "" {
		t.Error("failed job should record error message")
	}
	if dsRepo.ds.SyncState != entity.SyncStateFailed {
		t.Errorf("sync state = %s, want failed", dsRepo.ds.SyncState)
	}
	if len(sync.states) == 0 || sync.states[len(sync.states)-1] != entity.SyncStateFailed {
		t.Errorf("last sync transition = %v, want failed", sync.states)
	}
}

func TestRunnerEmbeddingCountMismatchFails(t *testing.T) {
	indexer := &fakeIndexer{}
	corpus := &fakeCorpus{events: []*entity.CorpusEvent{
		{City: "Miami", EventName: "Boat Show", EventDate: "2026-02-12", Description: "marina exhibits"},
		{City: "Miami", EventName: "Art Week", EventDate: "2026-03-01", Description: "open air galleries"},
	}}
	r, jobs, dsRepo, _ := newTestRunner(indexer, corpus)
	r.embedder = &shortEmbedder{}
	seedJob(jobs)

	if err := r.Run(context.Background(), "job-1"); err == nil {
		t.Fatal("expected error when backend returns fewer vectors than inputs")
	}
	if jobs.job.Status != entity.IngestionJobFailed {
		t.Errorf("job status = %s, want failed", jobs.job.Status)
	}
	if dsRepo.ds.SyncState != entity.SyncStateFailed {
		t.Errorf("sync state = %s, want failed", dsRepo.ds.SyncState)
	}
	for _, op := range indexer.ops {
		if op == "insert" {
			t.Error("no chunks should be inserted on embedding mismatch")
		}
	}
}

func TestRunnerEmptyCorpusFails(t *testing.T) {
	r, jobs, _, _ := newTestRunner(&fakeIndexer{}, &fakeCorpus{})
	seedJob(jobs)

	err := r.Run(context.Background(), "job-1")
	if !errors.Is(err, ErrEmptyCorpus) {
		t.Fatalf("err = %v, want ErrEmptyCorpus", err)
	}
	if jobs.job.Status != entity.IngestionJobFailed {
		t.Errorf("job status = %s, want failed", jobs.job.Status)
	}
}

func TestRunnerTerminalJobIsNoop(t *testing.T) {
	indexer := &fakeIndexer{}
	r, jobs, _, _ := newTestRunner(indexer, &fakeCorpus{})
	job := seedJob(jobs)
	job.Start()
	job.Complete(3)

	if err := r.Run(context.Background(), "job-1"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(indexer.ops) != 0 {
		t.Errorf("indexer touched for finished job: %v", indexer.ops)
	}
}
