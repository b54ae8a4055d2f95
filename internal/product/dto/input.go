package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	ID                 string              `json:"id,omitempty"` // optional, generated when empty
	Name               string              `json:"name"`
	ManufacturingCost  decimal.Decimal     `json:"manufacturingCost"`
	DefaultRetailPrice decimal.Decimal     `json:"defaultRetailPrice"`
	DefaultMrp         decimal.NullDecimal `json:"defaultMrp,omitzero"`
}

type UpdateProductInput struct {
	ID                 string              `json:"-"`
	Name               string              `json:"name"`
	ManufacturingCost  decimal.Decimal     `json:"manufacturingCost"`
	DefaultRetailPrice decimal.Decimal     `json:"defaultRetailPrice"`
	DefaultMrp         decimal.NullDecimal `json:"defaultMrp,omitzero"`
}

type ProductFilters struct {
	SearchQuery string // substring of the name, ignoring case
}
