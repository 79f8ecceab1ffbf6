package models

import "time"

// SearchRequest describes the single marketplace search a report answers.
type SearchRequest struct {
	Query    string
	Pages    int
	PageSize int
}

// Page is one raw search-result response, unparsed.
type Page struct {
	Number      int
	URL         string
	ContentType string
	Body        []byte
	FetchedAt   time.Time
}

// RawCard is the flattened, uninterpreted text of one listing card, kept for
// the raw CSV dump so parser drift can be diagnosed offline.
type RawCard struct {
	Page     int
	Position int
	Name     string
	Price    string
	URL      string
	Seller   string
	Location string
	Rating   string
	Reviews  string
	Sold     string
}

// Listing is one normalized marketplace search result.
// Optional fields are nil when upstream did not provide a usable value.
type Listing struct {
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	URL         string   `json:"url"`
	Seller      *string  `json:"seller,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"reviewCount,omitempty"`
	Sold        *string  `json:"sold,omitempty"`
	Sponsored   bool     `json:"sponsored"`
	Description []string `json:"description"`
}

// Qualifies reports whether l carries every required field.
func (l *Listing) Qualifies() bool {
	return l != nil && l.Name != "" && l.URL != "" && l.Price > 0
}

// Report is the output of one pipeline run. Consumers must treat it as
// read-only; Cheapest is always the same pointer as Products[0].
type Report struct {
	ID        string     `json:"id"`
	Query     string     `json:"query"`
	FetchedAt time.Time  `json:"fetchedAt"`
	Products  []*Listing `json:"products"`
	Cheapest  *Listing   `json:"cheapest,omitempty"`
}
