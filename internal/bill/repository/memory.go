package repository

import (
	"context"
	"errors"
	"sort"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/fekuna/omnipos-ledger-service/pkg/memstore"
)

type MemoryRepository struct {
	rows *memstore.Collection[model.Bill]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		rows: memstore.NewCollection(func(b model.Bill) string { return b.ID }, model.Bill.Clone),
	}
}

// List orders like the Postgres repository: date, then creation time, newest first.
func (r *MemoryRepository) List(_ context.Context) ([]model.Bill, error) {
	bills := r.rows.List()
	sort.SliceStable(bills, func(i, j int) bool {
		if bills[i].Date != bills[j].Date {
			return bills[i].Date > bills[j].Date
		}
		return bills[i].CreatedAt > bills[j].CreatedAt
	})
	return bills, nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*model.Bill, error) {
	b, ok := r.rows.Get(id)
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *MemoryRepository) Create(_ context.Context, b *model.Bill) error {
	return mapErr(r.rows.Insert(*b))
}

func (r *MemoryRepository) Replace(_ context.Context, b *model.Bill) error {
	return mapErr(r.rows.Replace(*b))
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	return mapErr(r.rows.Delete(id))
}

func (r *MemoryRepository) ReplaceAll(bills []model.Bill) error {
	return mapErr(r.rows.Reset(bills))
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
