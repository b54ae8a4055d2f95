package model

// Bundle is the full backup document: every collection plus the export time (RFC3339).
type Bundle struct {
	Bills      []Bill    `json:"bills"`
	Products   []Product `json:"products"`
	Shops      []Shop    `json:"shops"`
	ExportDate string    `json:"exportDate"`
}
