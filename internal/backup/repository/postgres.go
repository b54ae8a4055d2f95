package repository

import (
	"context"
	"fmt"

	billrepo "github.com/fekuna/omnipos-ledger-service/internal/bill/repository"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	productrepo "github.com/fekuna/omnipos-ledger-service/internal/product/repository"
	shoprepo "github.com/fekuna/omnipos-ledger-service/internal/shop/repository"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB       *sqlx.DB
	bills    *billrepo.PGRepository
	products *productrepo.PGRepository
	shops    *shoprepo.PGRepository
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{
		DB:       db,
		bills:    billrepo.NewPGRepository(db),
		products: productrepo.NewPGRepository(db),
		shops:    shoprepo.NewPGRepository(db),
	}
}

// Restore replaces bills, products and shops inside a single transaction.
func (r *PGRepository) Restore(ctx context.Context, b *model.Bundle) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := r.bills.ReplaceAllTx(ctx, tx, b.Bills); err != nil {
		return fmt.Errorf("restore bills: %w", err)
	}
	if err := r.products.ReplaceAllTx(ctx, tx, b.Products); err != nil {
		return fmt.Errorf("restore products: %w", err)
	}
	if err := r.shops.ReplaceAllTx(ctx, tx, b.Shops); err != nil {
		return fmt.Errorf("restore shops: %w", err)
	}
	return tx.Commit()
}
