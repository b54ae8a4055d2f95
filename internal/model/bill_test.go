package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBill_Recalculate(t *testing.T) {
	b := &Bill{
		Items: []BillItem{
			{ProductName: "Soap", RetailPrice: d("12.50"), Quantity: d("4"), Total: d("1")},
			{ProductName: "Rice", RetailPrice: d("40"), Quantity: d("2.5")},
		},
		TotalAmount: d("999"),
	}
	assert.False(t, b.Consistent())

	b.Recalculate()

	assert.True(t, b.Items[0].Total.Equal(d("50")))
	assert.True(t, b.Items[1].Total.Equal(d("100")))
	assert.True(t, b.TotalAmount.Equal(d("150")))
	assert.True(t, b.Consistent())
}

func TestBill_RecalculateEmpty(t *testing.T) {
	b := &Bill{TotalAmount: d("10")}
	b.Recalculate()
	assert.True(t, b.TotalAmount.IsZero())
	assert.True(t, b.Consistent())
}

func TestBill_Month(t *testing.T) {
	assert.Equal(t, "2024-02", (&Bill{Date: "2024-02-10"}).Month())
	assert.Equal(t, "2024", (&Bill{Date: "2024"}).Month())
}

func TestBill_CloneIsDeep(t *testing.T) {
	b := Bill{Items: []BillItem{{ProductName: "A"}}}
	c := b.Clone()
	c.Items[0].ProductName = "B"
	assert.Equal(t, "A", b.Items[0].ProductName)
}
