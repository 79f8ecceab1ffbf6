package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// wrapperKeys are the object keys a search payload may hold its listings
// under, checked in order. Nested wrappers like {"data":{"products":[...]}}
// are followed up to maxWrapperDepth levels.
var wrapperKeys = []string{"products", "items", "results", "listings", "data"}

const maxWrapperDepth = 3

// fieldKeys lists dotted paths per field; the first path yielding a usable
// value wins.
var fieldKeys = map[Field][]string{
	FieldName:        {"name", "title", "productName", "product_name"},
	FieldPrice:       {"price", "priceInt", "price_int", "priceText", "price_text", "price.value", "price.amount", "price.text"},
	FieldURL:         {"url", "link", "productUrl", "product_url", "href"},
	FieldSeller:      {"seller", "shopName", "shop_name", "shop.name", "seller.name", "merchant"},
	FieldLocation:    {"location", "city", "shop.city", "shop.location", "seller.location"},
	FieldRating:      {"rating", "ratingAverage", "rating_average", "rating.value", "stars"},
	FieldReviews:     {"reviewCount", "review_count", "countReview", "reviews", "rating.count"},
	FieldSold:        {"sold", "soldText", "sold_text", "labelSold", "label_sold"},
	FieldSponsored:   {"sponsored", "isAd", "is_ad", "ads", "promoted"},
	FieldDescription: {"description", "bullets", "features", "highlights"},
}

func splitJSON(body []byte) ([]Card, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrUnexpectedShape, err)
	}

	items, ok := findItems(root, 0)
	if !ok {
		return nil, fmt.Errorf("%w: no listing array in json payload", ErrUnexpectedShape)
	}

	cards := make([]Card, 0, len(items))
	for _, item := range items {
		obj, _ := item.(map[string]any)
		cards = append(cards, jsonCard(obj))
	}
	return cards, nil
}

// findItems locates the listing array in a bare-array or wrapped payload.
func findItems(v any, depth int) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		if depth >= maxWrapperDepth {
			return nil, false
		}
		for _, key := range wrapperKeys {
			if inner, ok := t[key]; ok && inner != nil {
				if items, ok := findItems(inner, depth+1); ok {
					return items, true
				}
			}
		}
	}
	return nil, false
}

// jsonCard is a Card backed by one decoded listing object. A nil map is a
// valid card with no fields.
type jsonCard map[string]any

func (c jsonCard) lookup(path string) (any, bool) {
	var cur any = map[string]any(c)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = obj[part]; !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

func (c jsonCard) Text(f Field) (string, bool) {
	for _, path := range fieldKeys[f] {
		v, ok := c.lookup(path)
		if !ok {
			continue
		}
		if s, ok := scalarText(v); ok {
			return s, true
		}
	}
	return "", false
}

func (c jsonCard) List(f Field) []string {
	for _, path := range fieldKeys[f] {
		v, ok := c.lookup(path)
		if !ok {
			continue
		}
		var out []string
		switch t := v.(type) {
		case []any:
			for _, item := range t {
				if s, ok := scalarText(item); ok {
					out = append(out, s)
				}
			}
		case string:
			out = splitLines(t)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

func (c jsonCard) Flag(f Field) (bool, bool) {
	for _, path := range fieldKeys[f] {
		v, ok := c.lookup(path)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case bool:
			return t, true
		case string:
			if b, ok := parseFlag(t); ok {
				return b, true
			}
		case json.Number:
			if n, err := t.Float64(); err == nil {
				return n != 0, true
			}
		}
	}
	return false, false
}

// scalarText renders strings and numbers as text; objects, arrays and
// booleans are not text.
func scalarText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := normaliseText(t)
		return s, s != ""
	case json.Number:
		s := t.String()
		if strings.ContainsAny(s, "eE") {
			f, err := t.Float64()
			if err != nil {
				return "", false
			}
			s = strconv.FormatFloat(f, 'f', -1, 64)
		}
		return s, true
	}
	return "", false
}
