package ledger

import (
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func item(name, price, qty string) model.BillItem {
	return model.BillItem{ID: name + "-" + qty, ProductName: name, RetailPrice: d(price), Quantity: d(qty)}
}

func bill(id, shop, date string, items ...model.BillItem) model.Bill {
	b := model.Bill{ID: id, ShopName: shop, Date: date, Items: items}
	b.Recalculate()
	return b
}
