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

const insertShop = `
        INSERT INTO shops (id, name, location)
        VALUES (:id, :name, :location)
    `

func (r *PGRepository) List(ctx context.Context) ([]model.Shop, error) {
	shops := []model.Shop{}
	if err := r.DB.SelectContext(ctx, &shops, `SELECT id, name, location FROM shops ORDER BY name ASC`); err != nil {
		return nil, err
	}
	return shops, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Shop, error) {
	var s model.Shop
	err := r.DB.GetContext(ctx, &s, `SELECT id, name, location FROM shops WHERE id = $1 LIMIT 1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *PGRepository) Create(ctx context.Context, s *model.Shop) error {
	_, err := r.DB.NamedExecContext(ctx, insertShop, s)
	return err
}

func (r *PGRepository) Replace(ctx context.Context, s *model.Shop) error {
	res, err := r.DB.NamedExecContext(ctx, `UPDATE shops SET name = :name, location = :location WHERE id = :id`, s)
	if err != nil {
		return err
	}
	return expectOne(res)
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM shops WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectOne(res)
}

// ReplaceAllTx empties the table and inserts shops inside the caller's transaction.
func (r *PGRepository) ReplaceAllTx(ctx context.Context, tx *sqlx.Tx, shops []model.Shop) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM shops"); err != nil {
		return err
	}
	for i := range shops {
		if _, err := tx.NamedExecContext(ctx, insertShop, &shops[i]); err != nil {
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
