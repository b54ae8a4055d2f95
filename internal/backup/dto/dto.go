package dto

type ImportSummary struct {
	Bills      int    `json:"bills"`
	Products   int    `json:"products"`
	Shops      int    `json:"shops"`
	ExportDate string `json:"exportDate,omitempty"`
	// Recalculated counts bills whose stored totals disagreed with their items.
	Recalculated int `json:"recalculated"`
}
