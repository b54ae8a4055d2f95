package ledger

import (
	"sort"

	"github.com/fekuna/omnipos-ledger-service/internal/model"
	"github.com/shopspring/decimal"
)

// AllShops disables the shop filter, as does an empty Filter.Shop. ValidateShopName keeps it
// off the shop master so the sentinel never hides a real shop.
const AllShops = "All"

const DefaultTopProducts = 5

type Filter struct {
	Shop      string `json:"shop,omitempty"`
	StartDate string `json:"startDate,omitempty"` // inclusive, YYYY-MM-DD
	EndDate   string `json:"endDate,omitempty"`   // inclusive, YYYY-MM-DD
}

// Match applies the shop filter, then the start bound, then the end bound.
// Dates compare as strings, which is chronological for YYYY-MM-DD.
func (f Filter) Match(b *model.Bill) bool {
	if f.Shop != "" && f.Shop != AllShops && b.ShopName != f.Shop {
		return false
	}
	if f.StartDate != "" && b.Date < f.StartDate {
		return false
	}
	if f.EndDate != "" && b.Date > f.EndDate {
		return false
	}
	return true
}

type Ranked struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

type TrendPoint struct {
	Month   string          `json:"month"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

type Metrics struct {
	TotalRevenue   decimal.Decimal `json:"totalRevenue"`
	TotalCost      decimal.Decimal `json:"totalCost"`
	GrossProfit    decimal.Decimal `json:"grossProfit"`
	NetProfit      decimal.Decimal `json:"netProfit"` // no expense layer, equals GrossProfit
	Margin         decimal.Decimal `json:"margin"`
	TotalItemsSold decimal.Decimal `json:"totalItemsSold"`
	BillCount      int             `json:"billCount"`
	ShopSales      []Ranked        `json:"shopSales"`    // revenue, descending
	ProductSales   []Ranked        `json:"productSales"` // quantity, descending, untruncated
	MonthlyTrend   []TrendPoint    `json:"monthlyTrend"` // ascending by month
}

// TopProducts returns the first n entries of the product ranking.
func (m *Metrics) TopProducts(n int) []Ranked {
	if n < 0 || n >= len(m.ProductSales) {
		return m.ProductSales
	}
	return m.ProductSales[:n]
}

type ShopStats struct {
	ShopName     string          `json:"shopName"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	GrossProfit  decimal.Decimal `json:"grossProfit"`
	NetProfit    decimal.Decimal `json:"netProfit"`
	BillCount    int             `json:"billCount"`
}

func FilterBills(bills []model.Bill, f Filter) []model.Bill {
	out := make([]model.Bill, 0, len(bills))
	for i := range bills {
		if f.Match(&bills[i]) {
			out = append(out, bills[i])
		}
	}
	return out
}

// Aggregate computes the dashboard metrics for the bills selected by f.
// It is a pure function of its inputs.
func Aggregate(bills []model.Bill, f Filter, costs CostLookup) *Metrics {
	return accumulate(FilterBills(bills, f), costs)
}

// ShopSummary computes the stats of the bills whose shop name equals shopName exactly.
func ShopSummary(bills []model.Bill, shopName string, costs CostLookup) ShopStats {
	selected := make([]model.Bill, 0)
	for i := range bills {
		if bills[i].ShopName == shopName {
			selected = append(selected, bills[i])
		}
	}
	m := accumulate(selected, costs)
	return ShopStats{
		ShopName:     shopName,
		TotalRevenue: m.TotalRevenue,
		GrossProfit:  m.GrossProfit,
		NetProfit:    m.NetProfit,
		BillCount:    m.BillCount,
	}
}

// Leaderboard returns stats for every known shop (zero when it has no bills) and every shop name
// seen on bills, by revenue descending then name.
func Leaderboard(bills []model.Bill, shops []model.Shop, costs CostLookup) []ShopStats {
	stats := make(map[string]*ShopStats, len(shops))
	get := func(name string) *ShopStats {
		s, ok := stats[name]
		if !ok {
			s = &ShopStats{ShopName: name}
			stats[name] = s
		}
		return s
	}

	for _, shop := range shops {
		get(shop.Name)
	}

	for i := range bills {
		b := &bills[i]
		s := get(b.ShopName)
		s.TotalRevenue = s.TotalRevenue.Add(b.TotalAmount)
		s.BillCount++

		profit := decimal.Zero
		for _, it := range b.Items {
			profit = profit.Add(it.Total.Sub(itemCost(costs, it)))
		}
		s.GrossProfit = s.GrossProfit.Add(profit)
		s.NetProfit = s.GrossProfit
	}

	out := make([]ShopStats, 0, len(stats))
	for _, s := range stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalRevenue.Cmp(out[j].TotalRevenue); c != 0 {
			return c > 0
		}
		return out[i].ShopName < out[j].ShopName
	})
	return out
}

type monthAcc struct {
	revenue decimal.Decimal
	profit  decimal.Decimal
}

func accumulate(bills []model.Bill, costs CostLookup) *Metrics {
	m := &Metrics{
		TotalRevenue:   decimal.Zero,
		TotalCost:      decimal.Zero,
		TotalItemsSold: decimal.Zero,
		BillCount:      len(bills),
	}

	shopSales := map[string]decimal.Decimal{}
	productSales := map[string]decimal.Decimal{}
	monthly := map[string]*monthAcc{}

	for i := range bills {
		b := &bills[i]
		m.TotalRevenue = m.TotalRevenue.Add(b.TotalAmount)
		shopSales[b.ShopName] = shopSales[b.ShopName].Add(b.TotalAmount)

		month := b.Month()
		acc, ok := monthly[month]
		if !ok {
			acc = &monthAcc{}
			monthly[month] = acc
		}
		acc.revenue = acc.revenue.Add(b.TotalAmount)

		for _, it := range b.Items {
			m.TotalItemsSold = m.TotalItemsSold.Add(it.Quantity)
			cost := itemCost(costs, it)
			m.TotalCost = m.TotalCost.Add(cost)
			acc.profit = acc.profit.Add(it.Total.Sub(cost))
			productSales[it.ProductName] = productSales[it.ProductName].Add(it.Quantity)
		}
	}

	m.GrossProfit = m.TotalRevenue.Sub(m.TotalCost)
	m.NetProfit = m.GrossProfit
	m.Margin = decimal.Zero
	if m.TotalRevenue.IsPositive() {
		m.Margin = m.GrossProfit.Div(m.TotalRevenue)
	}

	m.ShopSales = rank(shopSales)
	m.ProductSales = rank(productSales)

	m.MonthlyTrend = make([]TrendPoint, 0, len(monthly))
	for month, acc := range monthly {
		m.MonthlyTrend = append(m.MonthlyTrend, TrendPoint{Month: month, Revenue: acc.revenue, Profit: acc.profit})
	}
	sort.Slice(m.MonthlyTrend, func(i, j int) bool {
		return m.MonthlyTrend[i].Month < m.MonthlyTrend[j].Month
	})

	return m
}

func itemCost(costs CostLookup, it model.BillItem) decimal.Decimal {
	if costs == nil {
		return decimal.Zero
	}
	return costs.CostOf(it.ProductName).Mul(it.Quantity)
}

// rank orders by value descending; equal values fall back to name so output is stable.
func rank(values map[string]decimal.Decimal) []Ranked {
	out := make([]Ranked, 0, len(values))
	for name, v := range values {
		out = append(out, Ranked{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Value.Cmp(out[j].Value); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}
