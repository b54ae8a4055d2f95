package ledger

import (
	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/shopspring/decimal"
)

type CostLookup interface {
	CostOf(productName string) decimal.Decimal
}

// CostResolver maps product names (ignoring case) to manufacturing cost.
// A miss resolves to zero; it is not an error.
type CostResolver struct {
	costs map[string]decimal.Decimal
}

func NewCostResolver(products []model.Product) *CostResolver {
	costs := make(map[string]decimal.Decimal, len(products))
	for _, p := range products {
		key := NormalizeName(p.Name)
		if _, dup := costs[key]; dup {
			continue // first match wins
		}
		costs[key] = p.ManufacturingCost
	}
	return &CostResolver{costs: costs}
}

func (r *CostResolver) CostOf(productName string) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	if c, ok := r.costs[NormalizeName(productName)]; ok {
		return c
	}
	return decimal.Zero
}

// Has reports whether productName resolves to a catalog entry.
func (r *CostResolver) Has(productName string) bool {
	if r == nil {
		return false
	}
	_, ok := r.costs[NormalizeName(productName)]
	return ok
}
