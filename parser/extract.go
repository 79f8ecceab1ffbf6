package parser

import (
	"net/url"

	"price-scout/models"
)

// optionalExtractor fills one optional field of l from c, leaving it absent
// when upstream gives nothing usable.
type optionalExtractor func(c Card, l *models.Listing)

var optionalExtractors = []optionalExtractor{
	extractSeller,
	extractLocation,
	extractRating,
	extractReviewCount,
	extractSold,
	extractSponsored,
	extractDescription,
}

// ParseCard builds a candidate Listing from one card. It returns false when
// a required field (name, url, positive price) is missing or unparsable.
// Relative links are resolved against base.
func ParseCard(c Card, base *url.URL) (*models.Listing, bool) {
	name, ok := extractName(c)
	if !ok {
		return nil, false
	}
	link, ok := extractURL(c, base)
	if !ok {
		return nil, false
	}
	price, ok := extractPrice(c)
	if !ok {
		return nil, false
	}

	l := &models.Listing{
		Name:        name,
		Price:       price,
		URL:         link,
		Description: []string{},
	}
	for _, extract := range optionalExtractors {
		extract(c, l)
	}
	return l, true
}

func extractName(c Card) (string, bool) {
	return c.Text(FieldName)
}

func extractURL(c Card, base *url.URL) (string, bool) {
	raw, ok := c.Text(FieldURL)
	if !ok {
		return "", false
	}
	return CanonicalURL(raw, base)
}

func extractPrice(c Card) (int64, bool) {
	raw, ok := c.Text(FieldPrice)
	if !ok {
		return 0, false
	}
	return ParsePrice(raw)
}

func extractSeller(c Card, l *models.Listing) {
	if v, ok := c.Text(FieldSeller); ok {
		l.Seller = &v
	}
}

func extractLocation(c Card, l *models.Listing) {
	if v, ok := c.Text(FieldLocation); ok {
		l.Location = &v
	}
}

func extractRating(c Card, l *models.Listing) {
	raw, ok := c.Text(FieldRating)
	if !ok {
		return
	}
	if v, ok := ParseRating(raw); ok {
		l.Rating = &v
	}
}

func extractReviewCount(c Card, l *models.Listing) {
	raw, ok := c.Text(FieldReviews)
	if !ok {
		return
	}
	if v, ok := ParseCount(raw); ok {
		l.ReviewCount = &v
	}
}

func extractSold(c Card, l *models.Listing) {
	if v, ok := c.Text(FieldSold); ok {
		l.Sold = &v
	}
}

func extractSponsored(c Card, l *models.Listing) {
	if v, ok := c.Flag(FieldSponsored); ok {
		l.Sponsored = v
	}
}

func extractDescription(c Card, l *models.Listing) {
	if bullets := c.List(FieldDescription); len(bullets) > 0 {
		l.Description = bullets
	}
}
