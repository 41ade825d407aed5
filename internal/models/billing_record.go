package models

// BillingRecord is a validated water billing entry. Records are logged only.
type BillingRecord struct {
	ID    int64   `json:"id"` // Unix ms at creation
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Prev  float64 `json:"prev"`
	Curr  float64 `json:"curr"`
	Usage float64 `json:"usage"`
	Rate  float64 `json:"rate"`
	Fixed float64 `json:"fixed"`
	Total float64 `json:"total"`
	Date  string  `json:"date"`
}
