package milvus

import (
	"context"

	"city-events-api/internal/application/deployment"
)

// Provisioner 把仓储适配为部署图的 VectorProvisioner port。
// 所有创建操作幂等：目标已存在直接成功。
type Provisioner struct {
	repo *Repository
}

func NewProvisioner(repo *Repository) *Provisioner {
	return &Provisioner{repo: repo}
}

var _ deployment.VectorProvisioner = (*Provisioner)(nil)

func (p *Provisioner) EnsureCollection(ctx context.Context) error {
	return p.repo.CreateCollection(ctx)
}

func (p *Provisioner) EnsureIndex(ctx context.Context) error {
	if err := p.repo.CreateIndex(ctx); err != nil {
		return err
	}
	return p.repo.client.LoadCollection(ctx, CollectionEventChunks)
}

func (p *Provisioner) DropIndex(ctx context.Context) error {
	return p.repo.DropIndex(ctx)
}

func (p *Provisioner) DropCollection(ctx context.Context) error {
	return p.repo.DropCollection(ctx)
}
