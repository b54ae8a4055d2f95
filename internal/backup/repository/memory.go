package repository

import (
	"context"
	"fmt"

	billrepo "github.com/fekuna/omnipos-ledger-service/internal/bill/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	productrepo "github.com/fekuna/omnipos-ledger-service/internal/product/repository"
	shoprepo "github.com/fekuna/omnipos-ledger-service/internal/shop/repository"
)

type MemoryRepository struct {
	bills    *billrepo.MemoryRepository
	products *productrepo.MemoryRepository
	shops    *shoprepo.MemoryRepository
}

func NewMemoryRepository(bills *billrepo.MemoryRepository, products *productrepo.MemoryRepository, shops *shoprepo.MemoryRepository) *MemoryRepository {
	return &MemoryRepository{bills: bills, products: products, shops: shops}
}

// Restore swaps each collection; when a later swap fails the earlier ones are put back.
func (r *MemoryRepository) Restore(ctx context.Context, b *model.Bundle) error {
	prevBills, err := r.bills.List(ctx)
	if err != nil {
		return err
	}
	prevProducts, err := r.products.List(ctx)
	if err != nil {
		return err
	}

	if err := r.bills.ReplaceAll(b.Bills); err != nil {
		return fmt.Errorf("restore bills: %w", err)
	}
	if err := r.products.ReplaceAll(b.Products); err != nil {
		_ = r.bills.ReplaceAll(prevBills)
		return fmt.Errorf("restore products: %w", err)
	}
	if err := r.shops.ReplaceAll(b.Shops); err != nil {
		_ = r.bills.ReplaceAll(prevBills)
		_ = r.products.ReplaceAll(prevProducts)
		return fmt.Errorf("restore shops: %w", err)
	}
	return nil
}
