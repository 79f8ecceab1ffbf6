// Package parser turns raw marketplace search pages into candidate listings.
//
// Upstream markup is uncontrolled, so every field is read by its own
// extractor through the Card interface. A failed optional extractor leaves
// its field absent; a failed required extractor (name, url, price) drops the
// card. One malformed card never fails the page.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"price-scout/models"
)

// ErrUnexpectedShape means a page could not be split into cards at all.
var ErrUnexpectedShape = errors.New("unexpected response shape")

// PageError names the page that could not be split.
type PageError struct {
	Page int
	URL  string
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error { return e.Err }

// Field names one listing attribute a Card can be asked for.
type Field int

const (
	FieldName Field = iota
	FieldPrice
	FieldURL
	FieldSeller
	FieldLocation
	FieldRating
	FieldReviews
	FieldSold
	FieldSponsored
	FieldDescription
)

// Card is one raw listing block. Lookups never fail the card: a missing or
// unusable value reports ok == false.
type Card interface {
	// Text returns the first non-empty value for f, whitespace-normalised.
	Text(f Field) (string, bool)
	// List returns an ordered multi-valued field such as description bullets.
	List(f Field) []string
	// Flag returns a boolean field; ok is false when upstream says nothing.
	Flag(f Field) (value bool, ok bool)
}

// SplitPage breaks one fetched page into cards, choosing JSON or HTML
// handling from the content type and, failing that, the body itself.
func SplitPage(page *models.Page) ([]Card, error) {
	if page == nil {
		return nil, ErrUnexpectedShape
	}
	if isJSON(page) {
		return splitJSON(page.Body)
	}
	return splitHTML(page.Body)
}

func isJSON(page *models.Page) bool {
	if strings.Contains(strings.ToLower(page.ContentType), "json") {
		return true
	}
	trimmed := bytes.TrimSpace(page.Body)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}

// RawOf flattens a card's uninterpreted values for the raw CSV dump.
func RawOf(c Card) models.RawCard {
	text := func(f Field) string {
		v, _ := c.Text(f)
		return v
	}
	return models.RawCard{
		Name:     text(FieldName),
		Price:    text(FieldPrice),
		URL:      text(FieldURL),
		Seller:   text(FieldSeller),
		Location: text(FieldLocation),
		Rating:   text(FieldRating),
		Reviews:  text(FieldReviews),
		Sold:     text(FieldSold),
	}
}
