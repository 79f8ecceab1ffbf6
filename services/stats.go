package services

import (
	"math/big"
	"sort"

	"price-scout/models"
)

// Summarize derives the statistics a consumer renders next to a report.
// thresholds become inclusive price brackets, in the order given.
func Summarize(products []*models.Listing, thresholds []int64) *models.Summary {
	s := &models.Summary{
		Count:    len(products),
		Median:   Median(products),
		Average:  Average(products),
		Brackets: make([]models.BracketCount, 0, len(thresholds)),
	}

	for _, t := range thresholds {
		s.Brackets = append(s.Brackets, models.BracketCount{
			Threshold: t,
			Count:     CountAtOrBelow(products, t),
		})
	}

	if len(products) == 0 {
		return s
	}

	lo, hi := products[0].Price, products[0].Price
	for _, l := range products {
		if l.Sponsored {
			s.Sponsored++
		}
		lo = min(lo, l.Price)
		hi = max(hi, l.Price)
	}
	s.MinPrice = &lo
	s.MaxPrice = &hi
	return s
}

// Median returns the middle price, or the mean of the two central prices
// for an even count. It is nil for no products.
func Median(products []*models.Listing) *float64 {
	n := len(products)
	if n == 0 {
		return nil
	}

	prices := make([]int64, n)
	for i, l := range products {
		prices[i] = l.Price
	}
	sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })

	var m float64
	if n%2 == 1 {
		m = float64(prices[n/2])
	} else {
		a, b := prices[n/2-1], prices[n/2]
		m = float64(a) + float64(b-a)/2
	}
	return &m
}

// Average returns the arithmetic mean price rounded to two decimals, half
// away from zero. It is nil for no products.
func Average(products []*models.Listing) *float64 {
	n := int64(len(products))
	if n == 0 {
		return nil
	}

	// Any int64 price is accepted, so the sum may not fit in int64.
	sum := new(big.Int)
	for _, l := range products {
		sum.Add(sum, big.NewInt(l.Price))
	}

	avg, _ := new(big.Rat).SetFrac(roundedCents(sum, n), big.NewInt(100)).Float64()
	return &avg
}

// roundedCents computes round(100*sum/n) with halves away from zero,
// without going through floating point.
func roundedCents(sum *big.Int, n int64) *big.Int {
	bn := big.NewInt(n)
	cents := new(big.Int).Mul(sum, big.NewInt(200))
	neg := cents.Sign() < 0
	cents.Abs(cents)
	cents.Add(cents, bn)
	cents.Quo(cents, new(big.Int).Mul(bn, big.NewInt(2)))
	if neg {
		cents.Neg(cents)
	}
	return cents
}

// CountAtOrBelow counts products priced at or below threshold.
func CountAtOrBelow(products []*models.Listing, threshold int64) int {
	count := 0
	for _, l := range products {
		if l.Price <= threshold {
			count++
		}
	}
	return count
}
