// Package objectstore 提供对象存储访问
package objectstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"

	"city-events-api/internal/application/deployment"
	"city-events-api/internal/domain/entity"
	"city-events-api/internal/domain/repository"
)

var tracer = otel.Tracer("objectstore")

// GCSStore 基于 Google Cloud Storage 的语料与部署包存储
type GCSStore struct {
	client *storage.Client
}

var (
	_ repository.CorpusStore   = (*GCSStore)(nil)
	_ deployment.ArtifactStore = (*GCSStore)(nil)
)

// NewGCSStore 创建 GCS 存储客户端，凭证走应用默认凭证链
func NewGCSStore(ctx context.Context, opts ...option.ClientOption) (*GCSStore, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCSStore{client: client}, nil
}

// Close 关闭底层客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}

// LoadCorpus 读取并解析语料文件
// 语料文件为一个 JSON 数组，每个元素是一条活动记录
func (s *GCSStore) LoadCorpus(ctx context.Context, bucket, objectKey string) ([]*entity.CorpusEvent, error) {
	ctx, span := tracer.Start(ctx, "gcs.LoadCorpus",
		trace.WithAttributes(
			attribute.String("gcs.bucket", bucket),
			attribute.String("gcs.object", objectKey),
		))
	defer span.End()

	r, err := s.client.Bucket(bucket).Object(objectKey).NewReader(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("open corpus object %s/%s: %w", bucket, objectKey, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("read corpus object %s/%s: %w", bucket, objectKey, err)
	}

	var events []*entity.CorpusEvent
	if err := json.Unmarshal(data, &events); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("parse corpus object %s/%s: %w", bucket, objectKey, err)
	}

	span.SetAttributes(attribute.Int("corpus.events", len(events)))
	return events, nil
}

// Exists 检查对象是否存在
func (s *GCSStore) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	ctx, span := tracer.Start(ctx, "gcs.Exists",
		trace.WithAttributes(
			attribute.String("gcs.bucket", bucket),
			attribute.String("gcs.object", objectKey),
		))
	defer span.End()

	_, err := s.client.Bucket(bucket).Object(objectKey).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return false, nil
		}
		span.RecordError(err)
		return false, fmt.Errorf("stat object %s/%s: %w", bucket, objectKey, err)
	}
	return true, nil
}
