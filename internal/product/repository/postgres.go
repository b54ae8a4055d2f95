package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertProduct = `
        INSERT INTO products (id, name, manufacturing_cost, default_retail_price, default_mrp)
        VALUES (:id, :name, :manufacturing_cost, :default_retail_price, :default_mrp)
    `

func (r *PGRepository) List(ctx context.Context) ([]model.Product, error) {
	products := []model.Product{}
	query := `SELECT id, name, manufacturing_cost, default_retail_price, default_mrp FROM products ORDER BY name ASC`
	if err := r.DB.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	query := `SELECT id, name, manufacturing_cost, default_retail_price, default_mrp FROM products WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGRepository) Create(ctx context.Context, p *model.Product) error {
	_, err := r.DB.NamedExecContext(ctx, insertProduct, p)
	return err
}

func (r *PGRepository) Replace(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET name = :name,
            manufacturing_cost = :manufacturing_cost,
            default_retail_price = :default_retail_price,
            default_mrp = :default_mrp
        WHERE id = :id
    `
	res, err := r.DB.NamedExecContext(ctx, query, p)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM products WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ReplaceAllTx empties the table and inserts products inside the caller's transaction.
func (r *PGRepository) ReplaceAllTx(ctx context.Context, tx *sqlx.Tx, products []model.Product) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM products"); err != nil {
		return err
	}
	for i := range products {
		if _, err := tx.NamedExecContext(ctx, insertProduct, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}
