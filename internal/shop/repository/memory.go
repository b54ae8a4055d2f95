package repository

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/memstore"
)

type MemoryRepository struct {
	rows *memstore.Collection[model.Shop]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows: memstore.NewCollection(func(s model.Shop) string { return s.ID }, nil),
	}
}

func (r *MemoryRepository) List(_ context.Context) ([]model.Shop, error) {
	return r.rows.List(), nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Shop, error) {
	s, ok := r.rows.Get(id)
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (r *MemoryRepository) Create(_ context.Context, s *model.Shop) error {
	return mapErr(r.rows.Insert(*s))
}

func (r *MemoryRepository) Replace(_ context.Context, s *model.Shop) error {
	return mapErr(r.rows.Replace(*s))
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	return mapErr(r.rows.Delete(id))
}

func (r *MemoryRepository) ReplaceAll(shops []model.Shop) error {
	return mapErr(r.rows.Reset(shops))
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
