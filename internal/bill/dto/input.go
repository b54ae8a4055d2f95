package dto

import (
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ID          string              `json:"id,omitempty"`
	ProductName string              `json:"productName"`
	RetailPrice decimal.Decimal     `json:"retailPrice"`
	Quantity    decimal.Decimal     `json:"quantity"`
	Mrp         decimal.NullDecimal `json:"mrp,omitzero"`
}

// SaveBillInput carries a bill as entered. Totals are always recomputed, never read.
type SaveBillInput struct {
	ID            string      `json:"id,omitempty"`
	ShopName      string      `json:"shopName"`
	InvoiceNumber string      `json:"invoiceNumber"`
	Date          string      `json:"date"`
	Items         []ItemInput `json:"items"`
}

type BillFilters struct {
	Shop        string
	StartDate   string
	EndDate     string
	SearchQuery string
}

type CheckResult struct {
	Bill   *model.Bill `json:"bill"`
	Valid  bool        `json:"valid"`
	Issues error       `json:"-"`
}
