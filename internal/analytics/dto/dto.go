package dto

import (
	"github.com/fekuna/omnipos-ledger-service/internal/ledger"
	"github.com/fekuna/omnipos-ledger-service/internal/model"
)

type Dashboard struct {
	Filter      ledger.Filter   `json:"filter"`
	Metrics     *ledger.Metrics `json:"metrics"`
	TopProducts []ledger.Ranked `json:"topProducts"`
}

// ShopDetail is one shop's stats and bills. Shop is nil for a name only seen on bills.
type ShopDetail struct {
	Shop  *model.Shop      `json:"shop,omitempty"`
	Stats ledger.ShopStats `json:"stats"`
	Bills []model.Bill     `json:"bills"`
}
