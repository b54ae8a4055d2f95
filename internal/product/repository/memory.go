package repository

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/memstore"
)

type MemoryRepository struct {
	rows *memstore.Collection[model.Product]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows: memstore.NewCollection(func(p model.Product) string { return p.ID }, nil),
	}
}

func (r *MemoryRepository) List(_ context.Context) ([]model.Product, error) {
	return r.rows.List(), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := r.rows.Get(id)
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *MemoryRepository) Create(_ context.Context, p *model.Product) error {
	return mapErr(r.rows.Insert(*p))
}

func (r *MemoryRepository) Replace(_ context.Context, p *model.Product) error {
	return mapErr(r.rows.Replace(*p))
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	return mapErr(r.rows.Delete(id))
}

func (r *MemoryRepository) ReplaceAll(products []model.Product) error {
	return mapErr(r.rows.Reset(products))
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, memstore.ErrNotFound):
		return model.ErrNotFound
	case errors.Is(err, memstore.ErrDuplicate):
		return model.ErrDuplicateID
	}
	return err
}
