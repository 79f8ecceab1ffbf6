package services

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"price-scout/models"
)

// Assembler turns the qualifying set into a Report.
type Assembler struct {
	now func() time.Time
}

// NewAssembler creates an Assembler. A nil clock means time.Now.
func NewAssembler(now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{now: now}
}

// Assemble sorts qualifying listings by ascending price, keeping discovery
// order among equal prices, and stamps the report. It never fails; an empty
// input gives a report with no products and no cheapest listing.
func (a *Assembler) Assemble(query string, qualifying []*models.Listing) *models.Report {
	products := make([]*models.Listing, len(qualifying))
	copy(products, qualifying)

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Price < products[j].Price
	})

	report := &models.Report{
		ID:        uuid.NewString(),
		Query:     query,
		FetchedAt: a.now(),
		Products:  products,
	}
	if len(products) > 0 {
		report.Cheapest = products[0]
	}
	return report
}
