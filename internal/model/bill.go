package model

import "github.com/shopspring/decimal"

type BillItem struct {
	ID          string          `db:"id" json:"id"`
	ProductName string          `db:"product_name" json:"productName"`
	RetailPrice decimal.Decimal `db:"retail_price" json:"retailPrice"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	Total       decimal.Decimal `db:"total" json:"total"` // RetailPrice * Quantity
	// Mrp is the printed price on the pack, kept for reference only.
	Mrp decimal.NullDecimal `db:"mrp" json:"mrp,omitzero"`
}

type Bill struct {
	ID            string          `db:"id" json:"id"`
	ShopName      string          `db:"shop_name" json:"shopName"`
	InvoiceNumber string          `db:"invoice_number" json:"invoiceNumber"`
	Date          string          `db:"bill_date" json:"date"` // YYYY-MM-DD
	Items         []BillItem      `db:"-" json:"items"`
	TotalAmount   decimal.Decimal `db:"total_amount" json:"totalAmount"` // sum of Items[i].Total
	CreatedAt     int64           `db:"created_at" json:"createdAt"`     // unix millis
}

// Recalculate recomputes every item total and the bill total from prices and quantities.
func (b *Bill) Recalculate() {
	sum := decimal.Zero
	for i := range b.Items {
		b.Items[i].Total = b.Items[i].RetailPrice.Mul(b.Items[i].Quantity)
		sum = sum.Add(b.Items[i].Total)
	}
	b.TotalAmount = sum
}

// Consistent reports whether the stored totals match prices and quantities.
func (b *Bill) Consistent() bool {
	sum := decimal.Zero
	for _, it := range b.Items {
		if !it.Total.Equal(it.RetailPrice.Mul(it.Quantity)) {
			return false
		}
		sum = sum.Add(it.Total)
	}
	return sum.Equal(b.TotalAmount)
}

// Month returns the YYYY-MM part of Date.
func (b *Bill) Month() string {
	if len(b.Date) < 7 {
		return b.Date
	}
	return b.Date[:7]
}

// Clone returns a deep copy, so callers can mutate items without touching the original.
func (b Bill) Clone() Bill {
	items := make([]BillItem, len(b.Items))
	copy(items, b.Items)
	b.Items = items
	return b
}
