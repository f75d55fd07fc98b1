package ingestion

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
	"city-events-api/pkg/logger"
	"city-events-api/pkg/metrics"
)

const defaultEmbeddingBatch = 32

// Runner 执行摄取任务：先清空数据源的旧分片，再批量向量化写入。
type Runner struct {
	embedder    embedding.Embedder
	vector      VectorIndexer
	corpus      repository.CorpusStore
	jobs        repository.IngestionJobRepository
	dataSources repository.DataSourceRepository
	syncState   repository.SyncStateStore
	tx          repository.Transactor

	embeddingBatchSize int
}

func NewRunner(
	embedder embedding.Embedder,
	vector VectorIndexer,
	corpus repository.CorpusStore,
	jobs repository.IngestionJobRepository,
	dataSources repository.DataSourceRepository,
	syncState repository.SyncStateStore,
	embeddingBatchSize int,
) *Runner {
	bs := embeddingBatchSize
	if bs <= 0 {
		bs = defaultEmbeddingBatch
	}
	return &Runner{
		embedder:           embedder,
		vector:             vector,
		corpus:             corpus,
		jobs:               jobs,
		dataSources:        dataSources,
		syncState:          syncState,
		embeddingBatchSize: bs,
	}
}

// WithTransactor 设置事务管理器，任务与数据源的成对状态写入将在同一事务内提交。
func (r *Runner) WithTransactor(tx repository.Transactor) *Runner {
	r.tx = tx
	return r
}

func (r *Runner) Enabled() bool {
	return r != nil && r.embedder != nil && r.vector != nil
}

func (r *Runner) inTx(ctx context.Context, fn func(context.Context) error) error {
	if r.tx == nil {
		return fn(ctx)
	}
	return r.tx.WithTransaction(ctx, fn)
}

// Run 执行一次摄取任务，任务与数据源的状态流转全部在此落库。
// 失败时任务进入 failed、数据源进入 failed 同步状态，错误原样返回给调用方。
func (r *Runner) Run(ctx context.Context, jobID string) error {
	job, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load ingestion job %s: %w", jobID, err)
	}
	if job.Terminal() {
		logger.Warn(ctx, "ingestion job already finished", "job_id", jobID, "status", string(job.Status))
		return nil
	}

	ds, err := r.dataSources.GetByName(ctx, job.DataSourceName)
	if err != nil {
		r.failJob(ctx, job, nil, fmt.Errorf("load data source %s: %w", job.DataSourceName, err))
		return err
	}

	job.Start()
	ds.BeginSync()
	if err := r.inTx(ctx, func(txCtx context.Context) error {
		if err := r.jobs.Update(txCtx, job); err != nil {
			return fmt.Errorf("mark job running: %w", err)
		}
		if err := r.dataSources.Update(txCtx, ds); err != nil {
			return fmt.Errorf("mark data source syncing: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	r.setSyncState(ctx, ds.Name, entity.SyncStateInProgress)

	count, err := r.ingest(ctx, ds)
	if err != nil {
		r.failJob(ctx, job, ds, err)
		metrics.IngestionJobsTotal.WithLabelValues(ds.Name, "failed").Inc()
		return err
	}

	job.Complete(count)
	ds.CompleteSync()
	if err := r.inTx(ctx, func(txCtx context.Context) error {
		if err := r.jobs.Update(txCtx, job); err != nil {
			return fmt.Errorf("mark job completed: %w", err)
		}
		if err := r.dataSources.Update(txCtx, ds); err != nil {
			return fmt.Errorf("mark data source active: %w", err)
		}
		return nil
	}); err != nil {
		return err
	}
	r.setSyncState(ctx, ds.Name, entity.SyncStateActive)

	metrics.IngestionJobsTotal.WithLabelValues(ds.Name, "completed").Inc()
	metrics.IngestionDocuments.WithLabelValues(ds.Name).Add(float64(count))
	metrics.IngestionDuration.WithLabelValues(ds.Name).Observe(float64(job.DurationMs) / 1000)

	logger.Info(ctx, "ingestion job completed",
		"job_id", job.ID,
		"data_source", ds.Name,
		"documents", count,
		"duration_ms", job.DurationMs,
	)
	return nil
}

// ingest 执行核心摄取流程，返回写入的文档数。
func (r *Runner) ingest(ctx context.Context, ds *entity.DataSource) (int, error) {
	if !r.Enabled() {
		return 0, ErrVectorDisabled
	}
	if err := r.vector.EnsureEventChunksCollection(ctx); err != nil {
		return 0, fmt.Errorf("ensure collection: %w", err)
	}

	events, err := r.corpus.LoadCorpus(ctx, ds.Bucket, ds.ObjectKey)
	if err != nil {
		return 0, fmt.Errorf("load corpus %s/%s: %w", ds.Bucket, ds.ObjectKey, err)
	}

	chunks := make([]*EventChunk, 0, len(events))
	embedInputs := make([]string, 0, len(events))
	for _, ev := range events {
		if ev == nil {
			continue
		}
		if err := ev.Validate(); err != nil {
			logger.Warn(ctx, "skipping invalid corpus event", "data_source", ds.Name, "reason", err.Error())
			continue
		}
		text := strings.TrimSpace(ev.DocumentText())
		embedInputs = append(embedInputs, text)
		chunks = append(chunks, &EventChunk{
			ID:          ev.DocumentID(),
			DataSource:  ds.Name,
			City:        ev.City,
			EventDate:   ev.EventDate,
			TextContent: text,
		})
	}
	if len(chunks) == 0 {
		return 0, ErrEmptyCorpus
	}

	// 先删后写，保证同一数据源重复摄取不残留旧分片
	if err := r.vector.DeleteChunksByDataSource(ctx, ds.Name); err != nil {
		return 0, fmt.Errorf("delete stale chunks: %w", err)
	}

	vectors, err := r.embedBatch(ctx, embedInputs)
	if err != nil {
		return 0, fmt.Errorf("embed corpus: %w", err)
	}
	for i := range chunks {
		chunks[i].Vector = vectors[i]
	}

	if err := r.vector.InsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("insert chunks: %w", err)
	}
	return len(chunks), nil
}

func (r *Runner) failJob(ctx context.Context, job *entity.IngestionJob, ds *entity.DataSource, cause error) {
	job.Fail(cause.Error())
	if err := r.jobs.Update(ctx, job); err != nil {
		logger.Error(ctx, "persist failed job state", err, "job_id", job.ID)
	}
	if ds != nil {
		ds.FailSync(cause.Error())
		if err := r.dataSources.Update(ctx, ds); err != nil {
			logger.Error(ctx, "persist failed data source state", err, "data_source", ds.Name)
		}
		r.setSyncState(ctx, ds.Name, entity.SyncStateFailed)
	}
	logger.Error(ctx, "ingestion job failed", cause, "job_id", job.ID, "data_source", job.DataSourceName)
}

func (r *Runner) setSyncState(ctx context.Context, dataSourceName string, state entity.SyncState) {
	if r.syncState == nil {
		return
	}
	if err := r.syncState.SetSyncState(ctx, dataSourceName, state); err != nil {
		logger.Warn(ctx, "update sync state cache", "data_source", dataSourceName, "error", err.Error())
	}
}

func (r *Runner) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += r.embeddingBatchSize {
		end := start + r.embeddingBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		v64, err := r.embedder.EmbedStrings(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		if len(v64) != end-start {
			return nil, fmt.Errorf("embedding backend returned %d vectors for %d inputs", len(v64), end-start)
		}
		for _, vec := range v64 {
			f32 := make([]float32, 0, len(vec))
			for _, x := range vec {
				f32 = append(f32, float32(x))
			}
			out = append(out, f32)
		}
	}
	return out, nil
}
