package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

// itemRow is a bill item as stored in bill_items.
type itemRow struct {
	BillID   string `db:"bill_id"`
	Position int    `db:"position"`
	model.BillItem
}

const (
	selectBills = `
        SELECT id, shop_name, invoice_number, to_char(bill_date, 'YYYY-MM-DD') AS bill_date, total_amount, created_at
        FROM bills`
	selectItems = `
        SELECT bill_id, position, id, product_name, retail_price, quantity, total, mrp
        FROM bill_items`
	insertBill = `
        INSERT INTO bills (id, shop_name, invoice_number, bill_date, total_amount, created_at)
        VALUES (:id, :shop_name, :invoice_number, CAST(:bill_date AS DATE), :total_amount, :created_at)
    `
	insertItem = `
        INSERT INTO bill_items (bill_id, position, id, product_name, retail_price, quantity, total, mrp)
        VALUES (:bill_id, :position, :id, :product_name, :retail_price, :quantity, :total, :mrp)
    `
)

func (r *PGRepository) List(ctx context.Context) ([]model.Bill, error) {
	bills := []model.Bill{}
	if err := r.DB.SelectContext(ctx, &bills, selectBills+" ORDER BY bill_date DESC, created_at DESC"); err != nil {
		return nil, err
	}

	var items []itemRow
	if err := r.DB.SelectContext(ctx, &items, selectItems+" ORDER BY bill_id, position"); err != nil {
		return nil, err
	}
	attachItems(bills, items)
	return bills, nil
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Bill, error) {
	var b model.Bill
	err := r.DB.GetContext(ctx, &b, selectBills+" WHERE id = $1 LIMIT 1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var items []itemRow
	if err := r.DB.SelectContext(ctx, &items, selectItems+" WHERE bill_id = $1 ORDER BY position", id); err != nil {
		return nil, err
	}
	bills := []model.Bill{b}
	attachItems(bills, items)
	return &bills[0], nil
}

func (r *PGRepository) Create(ctx context.Context, b *model.Bill) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		return insertTx(ctx, tx, b)
	})
}

func (r *PGRepository) Replace(ctx context.Context, b *model.Bill) error {
	return r.inTx(ctx, func(tx *sqlx.Tx) error {
		query := `
            UPDATE bills
            SET shop_name = :shop_name,
                invoice_number = :invoice_number,
                bill_date = CAST(:bill_date AS DATE),
                total_amount = :total_amount,
                created_at = :created_at
            WHERE id = :id
        `
		res, err := tx.NamedExecContext(ctx, query, b)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return model.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM bill_items WHERE bill_id = $1", b.ID); err != nil {
			return err
		}
		return insertItemsTx(ctx, tx, b)
	})
}

// Delete removes the bill; its items go with it through the foreign key cascade.
func (r *PGRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM bills WHERE id = $1", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ReplaceAllTx empties bills and items and inserts bills inside the caller's transaction.
func (r *PGRepository) ReplaceAllTx(ctx context.Context, tx *sqlx.Tx, bills []model.Bill) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM bills"); err != nil {
		return err
	}
	for i := range bills {
		if err := insertTx(ctx, tx, &bills[i]); err != nil {
			return fmt.Errorf("insert bill %s: %w", bills[i].ID, err)
		}
	}
	return nil
}

func (r *PGRepository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func insertTx(ctx context.Context, tx *sqlx.Tx, b *model.Bill) error {
	if _, err := tx.NamedExecContext(ctx, insertBill, b); err != nil {
		return err
	}
	return insertItemsTx(ctx, tx, b)
}

func insertItemsTx(ctx context.Context, tx *sqlx.Tx, b *model.Bill) error {
	for i, it := range b.Items {
		row := itemRow{BillID: b.ID, Position: i, BillItem: it}
		if _, err := tx.NamedExecContext(ctx, insertItem, row); err != nil {
			return err
		}
	}
	return nil
}

func attachItems(bills []model.Bill, items []itemRow) {
	byBill := make(map[string][]model.BillItem, len(bills))
	for _, row := range items {
		byBill[row.BillID] = append(byBill[row.BillID], row.BillItem)
	}
	for i := range bills {
		bills[i].Items = byBill[bills[i].ID]
		if bills[i].Items == nil {
			bills[i].Items = []model.BillItem{}
		}
	}
}
