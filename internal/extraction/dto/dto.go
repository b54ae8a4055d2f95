package dto

import (
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/shopspring/decimal"
)

// PartialBill is what an extractor read off the image. Every field may be missing.
type PartialBill struct {
	ShopName      string              `json:"shopName"`
	InvoiceNumber string              `json:"invoiceNumber"`
	Date          string              `json:"date"`
	Items         []PartialItem       `json:"items"`
	TotalAmount   decimal.NullDecimal `json:"totalAmount"`
}

type PartialItem struct {
	ProductName string              `json:"productName"`
	RetailPrice decimal.NullDecimal `json:"retailPrice"`
	Quantity    decimal.NullDecimal `json:"quantity"`
	Total       decimal.NullDecimal `json:"total"`
}

type DraftInput struct {
	Image    []byte `json:"image"` // base64 in JSON
	MimeType string `json:"mimeType"`
}

// Draft is a bill ready for review. Issues holds the validation errors, nil when Valid.
type Draft struct {
	Bill *model.Bill `json:"bill"`
	// ReportedTotal is the total printed on the bill, when the extractor found one.
	ReportedTotal decimal.NullDecimal `json:"reportedTotal"`
	TotalMismatch bool                `json:"totalMismatch"`
	Valid         bool                `json:"valid"`
	Issues        error               `json:"-"`
}
