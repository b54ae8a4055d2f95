package model

import "github.com/shopspring/decimal"

type Product struct {
	ID                 string          `db:"id" json:"id"`
	Name               string          `db:"name" json:"name"`
	ManufacturingCost  decimal.Decimal `db:"manufacturing_cost" json:"manufacturingCost"`
	DefaultRetailPrice decimal.Decimal `db:"default_retail_price" json:"defaultRetailPrice"`
	// DefaultMrp is the printed maximum retail price, when known. Reports never read it.
	DefaultMrp decimal.NullDecimal `db:"default_mrp" json:"defaultMrp,omitzero"`
}
