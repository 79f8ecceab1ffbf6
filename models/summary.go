package models

// BracketCount is the number of products priced at or below Threshold.
type BracketCount struct {
	Threshold int64 `json:"threshold"`
	Count     int   `json:"count"`
}

// Summary holds statistics derived from a Report's products.
// Median, Average, MinPrice and MaxPrice are nil when there are no products.
type Summary struct {
	Count     int            `json:"count"`
	Sponsored int            `json:"sponsored"`
	MinPrice  *int64         `json:"minPrice"`
	MaxPrice  *int64         `json:"maxPrice"`
	Median    *float64       `json:"median"`
	Average   *float64       `json:"average"`
	Brackets  []BracketCount `json:"brackets"`
}
